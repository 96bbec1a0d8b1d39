package sweeper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keysweep/keysweep-aws/internal/aws"
)

// walkIdentities enumerates the account's identities, deduplicates them by
// id and applies the scope filter. A listing failure after retries aborts
// the run: without the identity set there is nothing to sweep.
func (s *Sweeper) walkIdentities(ctx context.Context) ([]aws.User, error) {
	var listed []aws.User
	err := s.withRetry(ctx, "listing users", func() error {
		users, err := s.provider.ListUsers(ctx)
		if err != nil {
			return err
		}
		listed = users
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking identities: %w", err)
	}

	seen := make(map[string]bool, len(listed))
	kept := make([]aws.User, 0, len(listed))
	for _, u := range listed {
		if seen[u.UserID] {
			// A duplicate means the provider listing is inconsistent.
			s.log.Warn("duplicate identity in listing, keeping first occurrence",
				zap.String("user", u.UserName),
				zap.String("user_id", u.UserID))
			continue
		}
		seen[u.UserID] = true

		if !s.config.Filter(u) {
			s.log.Debug("identity out of scope",
				zap.String("user", u.UserName))
			continue
		}
		kept = append(kept, u)
	}

	return kept, nil
}
