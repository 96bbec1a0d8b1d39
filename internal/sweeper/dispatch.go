package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// dispatchWarn renders and sends the rotation reminder for one batch. A
// transport failure is logged and counted; the next sweep re-derives the
// batch and tries again, so nothing is queued.
func (s *Sweeper) dispatchWarn(ctx context.Context, batch Batch, accountLabel string, now time.Time, report *Report) {
	body, err := render(warnNotice, s.noticeData(batch, accountLabel, now))
	if err != nil {
		report.NotificationFailures++
		s.log.Error("rendering rotation reminder failed",
			zap.String("owner", batch.Owner),
			zap.Error(err))
		return
	}

	if s.config.DryRun {
		s.log.Info("dry run: would send rotation reminder",
			zap.String("owner", batch.Owner),
			zap.Int("keys", len(batch.Keys)))
		return
	}

	if err := s.notifier.Send(ctx, batch.Owner, warnSubject(accountLabel), body); err != nil {
		report.NotificationFailures++
		s.log.Error("sending rotation reminder failed",
			zap.String("owner", batch.Owner),
			zap.String("transport", s.notifier.Name()),
			zap.Error(err))
		return
	}

	report.NotificationsSent++
	s.log.Info("rotation reminder sent",
		zap.String("owner", batch.Owner),
		zap.Int("keys", len(batch.Keys)))
}

// dispatchDelete sends the final notice for one batch, then revokes every
// key in it. Notify first, delete second; the two halves are deliberately
// not transactional. Each key is deleted by its own id, and a failure for
// one key never blocks the rest of the batch.
func (s *Sweeper) dispatchDelete(ctx context.Context, batch Batch, accountLabel string, now time.Time, report *Report) {
	body, err := render(deleteNotice, s.noticeData(batch, accountLabel, now))
	if err != nil {
		report.NotificationFailures++
		s.log.Error("rendering revocation notice failed",
			zap.String("owner", batch.Owner),
			zap.Error(err))
		body = ""
	}

	if s.config.DryRun {
		for _, k := range batch.Keys {
			s.log.Info("dry run: would revoke access key",
				zap.String("owner", batch.Owner),
				zap.String("access_key_id", k.AccessKeyID),
				zap.Int("age_days", k.AgeDays(now)))
		}
		return
	}

	if body != "" {
		if err := s.notifier.Send(ctx, batch.Owner, deleteSubject(accountLabel), body); err != nil {
			report.NotificationFailures++
			s.log.Error("sending revocation notice failed",
				zap.String("owner", batch.Owner),
				zap.String("transport", s.notifier.Name()),
				zap.Error(err))
		} else {
			report.NotificationsSent++
		}
	}

	for _, k := range batch.Keys {
		key := k
		err := s.withRetry(ctx, "deleting access key", func() error {
			return s.provider.DeleteAccessKey(ctx, key.UserName, key.AccessKeyID)
		})
		if err != nil {
			report.DeleteFailures++
			s.log.Error("deleting access key failed",
				zap.String("owner", key.UserName),
				zap.String("access_key_id", key.AccessKeyID),
				zap.Error(err))
			continue
		}

		report.KeysDeleted++
		report.Deleted = append(report.Deleted, DeletedKey{
			Owner:       key.UserName,
			AccessKeyID: key.AccessKeyID,
			CreatedOn:   key.CreateDate.Format(noticeDateLayout),
		})
		s.log.Info("access key revoked",
			zap.String("owner", key.UserName),
			zap.String("access_key_id", key.AccessKeyID),
			zap.Int("age_days", key.AgeDays(now)))
	}
}

// publishDigest sends the admin summary of revoked keys to the configured
// topic. Best effort: a publish failure is only logged.
func (s *Sweeper) publishDigest(ctx context.Context, accountLabel string, report *Report) {
	if s.digest == nil || s.config.DigestTopicARN == "" || len(report.Deleted) == 0 {
		return
	}

	body, err := render(digestNotice, digestData(accountLabel, report.Deleted))
	if err != nil {
		s.log.Error("rendering sweep digest failed", zap.Error(err))
		return
	}

	if err := s.digest.Send(ctx, s.config.DigestTopicARN, digestSubject(accountLabel), body); err != nil {
		s.log.Error("publishing sweep digest failed",
			zap.String("topic_arn", s.config.DigestTopicARN),
			zap.Error(err))
		return
	}

	s.log.Info("sweep digest published",
		zap.String("topic_arn", s.config.DigestTopicARN),
		zap.Int("keys_deleted", len(report.Deleted)))
}
