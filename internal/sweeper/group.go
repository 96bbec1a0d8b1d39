package sweeper

import (
	"sort"

	"github.com/keysweep/keysweep-aws/internal/aws"
)

// Action is the pending action shared by all keys in a batch.
type Action string

const (
	// ActionWarn sends a rotation reminder.
	ActionWarn Action = "warn"
	// ActionDelete sends a final notice and revokes the keys.
	ActionDelete Action = "delete"
)

// Batch groups one owner's keys sharing one pending action, so each owner
// receives a single notification per action per run.
type Batch struct {
	Owner  string
	Action Action
	Keys   []aws.AccessKey
}

// Group partitions keys into per-owner batches. Keys within a batch are
// ordered oldest first (ties broken by key id) and batches are ordered by
// owner, so generated message text is reproducible.
func Group(keys []aws.AccessKey, action Action) []Batch {
	byOwner := make(map[string][]aws.AccessKey)
	for _, k := range keys {
		byOwner[k.UserName] = append(byOwner[k.UserName], k)
	}

	batches := make([]Batch, 0, len(byOwner))
	for owner, ownerKeys := range byOwner {
		sort.Slice(ownerKeys, func(i, j int) bool {
			if !ownerKeys[i].CreateDate.Equal(ownerKeys[j].CreateDate) {
				return ownerKeys[i].CreateDate.Before(ownerKeys[j].CreateDate)
			}
			return ownerKeys[i].AccessKeyID < ownerKeys[j].AccessKeyID
		})
		batches = append(batches, Batch{Owner: owner, Action: action, Keys: ownerKeys})
	}

	sort.Slice(batches, func(i, j int) bool {
		return batches[i].Owner < batches[j].Owner
	})

	return batches
}
