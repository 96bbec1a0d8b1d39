package sweeper

import (
	"time"

	"github.com/keysweep/keysweep-aws/internal/aws"
)

// State is the lifecycle state of an access key, derived from its status and
// age alone. Severity is non-decreasing in age: Fresh < Warn < Delete.
type State int

const (
	// StateExcluded means the key is not subject to the policy (inactive).
	StateExcluded State = iota
	// StateFresh means the key is within the allowed age, no action.
	StateFresh
	// StateWarn means the owner should be reminded to rotate.
	StateWarn
	// StateDelete means the key exceeded the hard age limit and is revoked.
	StateDelete
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateExcluded:
		return "excluded"
	case StateFresh:
		return "fresh"
	case StateWarn:
		return "warn"
	case StateDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Classify maps an access key to its lifecycle state. Pure: the same key,
// clock and thresholds always produce the same state. Callers guarantee
// deleteAfterDays > warnAfterDays >= 0.
func Classify(key aws.AccessKey, now time.Time, warnAfterDays, deleteAfterDays int) State {
	if !key.Active {
		return StateExcluded
	}

	age := key.AgeDays(now)
	switch {
	case age >= deleteAfterDays:
		return StateDelete
	case age >= warnAfterDays:
		return StateWarn
	default:
		return StateFresh
	}
}
