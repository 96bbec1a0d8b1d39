package sweeper

import (
	"testing"
	"time"

	"github.com/keysweep/keysweep-aws/internal/aws"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	keyAged := func(days int, active bool) aws.AccessKey {
		return aws.AccessKey{
			AccessKeyID: "AKIA123",
			UserName:    "alice",
			Active:      active,
			CreateDate:  now.AddDate(0, 0, -days),
		}
	}

	tests := []struct {
		name string
		key  aws.AccessKey
		want State
	}{
		{"inactive key is excluded regardless of age", keyAged(500, false), StateExcluded},
		{"new key is fresh", keyAged(5, true), StateFresh},
		{"key just under warn threshold is fresh", keyAged(89, true), StateFresh},
		{"key exactly at warn threshold warns", keyAged(90, true), StateWarn},
		{"key between thresholds warns", keyAged(95, true), StateWarn},
		{"key just under delete threshold warns", keyAged(99, true), StateWarn},
		{"key exactly at delete threshold deletes", keyAged(100, true), StateDelete},
		{"key far past delete threshold deletes", keyAged(400, true), StateDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.key, now, 90, 100); got != tt.want {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	key := aws.AccessKey{AccessKeyID: "AKIA123", Active: true, CreateDate: now.AddDate(0, 0, -95)}

	first := Classify(key, now, 90, 100)
	for i := 0; i < 10; i++ {
		if got := Classify(key, now, 90, 100); got != first {
			t.Fatalf("classification changed between identical calls: %v then %v", first, got)
		}
	}
}

func TestClassifySeverityNonDecreasingInAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	prev := StateFresh
	for age := 0; age <= 150; age++ {
		key := aws.AccessKey{AccessKeyID: "AKIA123", Active: true, CreateDate: now.AddDate(0, 0, -age)}
		state := Classify(key, now, 90, 100)
		if state < prev {
			t.Fatalf("severity decreased at age %d: %v after %v", age, state, prev)
		}
		prev = state
	}
}

func TestClassifyCadenceDoesNotInfluenceState(t *testing.T) {
	// The run cadence only words the notification text; it is not a
	// classification input at all, which the signature already guarantees.
	// Spot-check the thresholds the classifier does take.
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	key := aws.AccessKey{AccessKeyID: "AKIA123", Active: true, CreateDate: now.AddDate(0, 0, -50)}

	if got := Classify(key, now, 40, 60); got != StateWarn {
		t.Fatalf("expected warn with tighter thresholds, got %v", got)
	}
	if got := Classify(key, now, 90, 100); got != StateFresh {
		t.Fatalf("expected fresh with default thresholds, got %v", got)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateExcluded: "excluded",
		StateFresh:    "fresh",
		StateWarn:     "warn",
		StateDelete:   "delete",
		State(42):     "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
