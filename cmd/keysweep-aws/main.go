// keysweep-aws enforces access key rotation policy across AWS accounts.
//
// This binary is designed to be executed by a scheduler (cron, EventBridge).
// Each invocation performs one full sweep and exits: owners of aging keys
// are reminded to rotate, keys past the hard age limit are revoked.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keysweep/keysweep-aws/internal/aws"
	"github.com/keysweep/keysweep-aws/internal/config"
	"github.com/keysweep/keysweep-aws/internal/logging"
	"github.com/keysweep/keysweep-aws/internal/notify"
	"github.com/keysweep/keysweep-aws/internal/sweeper"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dryRun  bool
		debug   bool
		envFile string
	)

	rootCmd := &cobra.Command{
		Use:   "keysweep-aws",
		Short: "Sweep aging IAM access keys: remind owners, revoke overdue keys",
		Long: `keysweep-aws scans every IAM user in the configured account(s), classifies
each access key by age against the rotation policy, emails owners of aging
keys and revokes keys past the hard age limit. The tool keeps no state of
its own; each scheduled run re-derives everything from key creation dates.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Best-effort .env load for local runs; the scheduler injects
			// real environments directly.
			if envFile != "" {
				_ = godotenv.Load(envFile)
			} else {
				_ = godotenv.Load()
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.New(debug)
			defer logger.Sync()

			return sweep(cmd.Context(), cfg, dryRun, logger)
		},
	}

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Scan and classify but send and delete nothing")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "Load environment from this file (default .env if present)")

	return rootCmd.Execute()
}

// sweep runs the engine against every configured account and prints the run
// reports as JSON. Per-account failures are logged and the remaining
// accounts still swept; only a sweep that produced no report at all fails
// the invocation.
func sweep(ctx context.Context, cfg *config.Config, dryRun bool, logger *zap.Logger) error {
	notifier, err := notify.NewEmailNotifier(ctx, cfg.Notify.Region, cfg.Notify.SenderAddress)
	if err != nil {
		return fmt.Errorf("creating email notifier: %w", err)
	}

	var opts []sweeper.Option
	if cfg.Notify.DigestTopicARN != "" {
		digest, err := notify.NewTopicNotifier(ctx, cfg.Notify.Region)
		if err != nil {
			return fmt.Errorf("creating digest notifier: %w", err)
		}
		opts = append(opts, sweeper.WithDigest(digest))
	}

	// No accounts configured means the default credential chain.
	accounts := cfg.Accounts
	if len(accounts) == 0 {
		accounts = []config.AccountConfig{{}}
	}

	sweeperConfig := sweeper.Config{
		WarnAfterDays:   cfg.Policy.WarnAfterDays,
		DeleteAfterDays: cfg.Policy.DeleteAfterDays,
		RunCadenceDays:  cfg.Policy.RunCadenceDays,
		SupportAddress:  cfg.Notify.SupportAddress,
		DigestTopicARN:  cfg.Notify.DigestTopicARN,
		AccountProfiles: cfg.AccountProfiles,
		DryRun:          dryRun,
		ListWorkers:     cfg.ListWorkers,
	}

	var reports []*sweeper.Report
	var failures int
	for _, acct := range accounts {
		client, err := newClient(ctx, acct)
		if err != nil {
			failures++
			logger.Error("creating AWS client",
				zap.String("role_arn", acct.RoleARN),
				zap.Error(err))
			continue
		}

		s, err := sweeper.New(sweeperConfig, client, notifier, logger, opts...)
		if err != nil {
			return fmt.Errorf("creating sweeper: %w", err)
		}

		report, err := s.Run(ctx)
		if err != nil {
			failures++
			logger.Error("sweep failed",
				zap.String("role_arn", acct.RoleARN),
				zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling reports: %w", err)
	}
	fmt.Println(string(out))

	if len(reports) == 0 && failures > 0 {
		return fmt.Errorf("all %d account sweep(s) failed", failures)
	}
	return nil
}

// newClient creates an AWS client for the given account configuration.
func newClient(ctx context.Context, acct config.AccountConfig) (*aws.AWSClient, error) {
	if acct.RoleARN != "" {
		return aws.NewClientWithRole(ctx, acct.RoleARN, acct.ExternalID)
	}
	return aws.NewClient(ctx)
}
