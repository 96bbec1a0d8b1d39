// Package sweeper implements the access key lifecycle engine: it walks the
// account's identities, classifies every access key by age, reminds owners
// of aging keys and revokes keys past the hard limit. The engine holds no
// state between runs; every sweep re-derives key ages from their creation
// timestamps, so repeated invocations converge on the same decisions.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keysweep/keysweep-aws/internal/aws"
	"github.com/keysweep/keysweep-aws/internal/notify"
)

// IdentityProvider is the provider surface the sweeper consumes. Implemented
// by *aws.AWSClient; narrowed here so tests can fake it.
type IdentityProvider interface {
	GetCallerIdentity(ctx context.Context) (string, error)
	ListUsers(ctx context.Context) ([]aws.User, error)
	ListAccessKeys(ctx context.Context, userName string) ([]aws.AccessKey, error)
	DeleteAccessKey(ctx context.Context, userName, accessKeyID string) error
}

// IdentityFilter decides whether an identity's keys are subject to the
// policy. Pluggable so the bot-detection heuristic can evolve without
// touching the walker.
type IdentityFilter func(aws.User) bool

// InteractiveLoginOnly keeps identities that have signed in to the console
// at least once. Identities that never did are treated as service accounts
// and left alone.
func InteractiveLoginOnly(u aws.User) bool {
	return u.HasInteractiveLogin()
}

// Config holds sweeper configuration.
type Config struct {
	WarnAfterDays   int
	DeleteAfterDays int
	RunCadenceDays  int

	// SupportAddress is included in notification text when set.
	SupportAddress string

	// DigestTopicARN receives the post-run admin digest when set.
	DigestTopicARN string

	// AccountProfiles maps account IDs to display labels for notices.
	AccountProfiles map[string]string

	// DryRun scans and classifies but sends and deletes nothing.
	DryRun bool

	// ListWorkers bounds concurrent per-identity key lookups.
	ListWorkers int

	// Filter decides which identities are in scope. Defaults to
	// InteractiveLoginOnly.
	Filter IdentityFilter
}

// Sweeper drives one full sweep of an account.
type Sweeper struct {
	config   Config
	provider IdentityProvider
	notifier notify.Notifier
	digest   notify.Notifier
	log      *zap.Logger
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithDigest sets the transport for the post-run admin digest.
func WithDigest(n notify.Notifier) Option {
	return func(s *Sweeper) {
		s.digest = n
	}
}

// New creates a Sweeper. The threshold invariant is enforced here: a
// configuration that would misclassify keys refuses to run at all.
func New(config Config, provider IdentityProvider, notifier notify.Notifier, logger *zap.Logger, opts ...Option) (*Sweeper, error) {
	if config.WarnAfterDays < 0 {
		return nil, fmt.Errorf("warn threshold must be >= 0 days, got %d", config.WarnAfterDays)
	}
	if config.DeleteAfterDays <= config.WarnAfterDays {
		return nil, fmt.Errorf("delete threshold (%d days) must be greater than warn threshold (%d days)",
			config.DeleteAfterDays, config.WarnAfterDays)
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if notifier == nil && !config.DryRun {
		return nil, fmt.Errorf("notifier is required")
	}
	if config.RunCadenceDays < 1 {
		config.RunCadenceDays = 1
	}
	if config.ListWorkers < 1 {
		config.ListWorkers = 1
	}
	if config.Filter == nil {
		config.Filter = InteractiveLoginOnly
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sweeper{
		config:   config,
		provider: provider,
		notifier: notifier,
		log:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run performs one full sweep and returns the run report. Per-identity and
// per-key failures are logged and counted but never abort the run; only a
// total inability to enumerate the account is returned as an error.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	now := time.Now().UTC()
	report := NewReport(s.config.DryRun, now)

	accountID, err := s.provider.GetCallerIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting account identity: %w", err)
	}
	label := s.accountLabel(accountID)
	report.AccountID = accountID
	report.AccountLabel = label

	s.log.Info("starting access key sweep",
		zap.String("account", accountID),
		zap.Int("warn_after_days", s.config.WarnAfterDays),
		zap.Int("delete_after_days", s.config.DeleteAfterDays),
		zap.Bool("dry_run", s.config.DryRun))

	users, err := s.walkIdentities(ctx)
	if err != nil {
		return nil, err
	}
	report.IdentitiesScanned = len(users)

	keys := s.collectInventory(ctx, users, report)

	var warnKeys, deleteKeys []aws.AccessKey
	for _, k := range keys {
		switch Classify(k, now, s.config.WarnAfterDays, s.config.DeleteAfterDays) {
		case StateWarn:
			warnKeys = append(warnKeys, k)
		case StateDelete:
			deleteKeys = append(deleteKeys, k)
		}
	}

	warnBatches := Group(warnKeys, ActionWarn)
	deleteBatches := Group(deleteKeys, ActionDelete)
	report.WarnBatches = len(warnBatches)
	report.DeleteBatches = len(deleteBatches)

	for _, batch := range warnBatches {
		s.dispatchWarn(ctx, batch, label, now, report)
	}
	for _, batch := range deleteBatches {
		s.dispatchDelete(ctx, batch, label, now, report)
	}

	s.publishDigest(ctx, label, report)

	report.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	s.log.Info("sweep complete",
		zap.String("account", accountID),
		zap.Int("identities_scanned", report.IdentitiesScanned),
		zap.Int("identities_skipped", report.IdentitiesSkipped),
		zap.Int("warn_batches", report.WarnBatches),
		zap.Int("delete_batches", report.DeleteBatches),
		zap.Int("keys_deleted", report.KeysDeleted))

	return report, nil
}

// accountLabel returns the configured display label for the account,
// falling back to the raw account ID.
func (s *Sweeper) accountLabel(accountID string) string {
	if label, ok := s.config.AccountProfiles[accountID]; ok {
		return label
	}
	return accountID
}

// withRetry runs fn up to retryAttempts times, sleeping between attempts.
// The context cancelling ends the retries early with the last error.
func (s *Sweeper) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == retryAttempts {
			break
		}
		s.log.Debug("retrying after provider error",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return err
		case <-time.After(retryDelay):
		}
	}
	return err
}
