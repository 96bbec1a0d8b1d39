package sweeper

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/keysweep/keysweep-aws/internal/aws"
)

// collectInventory lists the access keys of every in-scope identity using a
// bounded worker pool. A failure for one identity skips that identity for
// this run and never aborts the others; the next scheduled sweep retries it.
func (s *Sweeper) collectInventory(ctx context.Context, users []aws.User, report *Report) []aws.AccessKey {
	jobs := make(chan aws.User)
	var mu sync.Mutex
	var keys []aws.AccessKey
	var wg sync.WaitGroup

	for i := 0; i < s.config.ListWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				var userKeys []aws.AccessKey
				err := s.withRetry(ctx, "listing access keys", func() error {
					listed, listErr := s.provider.ListAccessKeys(ctx, u.UserName)
					if listErr != nil {
						return listErr
					}
					userKeys = listed
					return nil
				})

				mu.Lock()
				if err != nil {
					report.IdentitiesSkipped++
					report.SkippedIdentities = append(report.SkippedIdentities, u.UserName)
					s.log.Warn("skipping identity, could not list access keys",
						zap.String("user", u.UserName),
						zap.Error(err))
				} else {
					keys = append(keys, userKeys...)
					report.KeysInventoried += len(userKeys)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, u := range users {
		select {
		case jobs <- u:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Strings(report.SkippedIdentities)
	return keys
}
