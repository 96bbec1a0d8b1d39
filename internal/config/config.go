// Package config loads keysweep configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults match the rotation policy this tool was introduced with: keys are
// flagged after 90 days and revoked the day after, with the sweep scheduled
// daily.
const (
	DefaultWarnAfterDays   = 90
	DefaultDeleteAfterDays = 91
	DefaultRunCadenceDays  = 1
	DefaultListWorkers     = 4
)

// Config holds application configuration.
type Config struct {
	Policy   PolicyConfig
	Notify   NotifyConfig
	Accounts []AccountConfig

	// AccountProfiles maps an AWS account ID to the display label used in
	// notification text (e.g. "123456789012" -> "prod").
	AccountProfiles map[string]string

	// ListWorkers bounds concurrent per-user access key lookups.
	ListWorkers int
}

// PolicyConfig holds the key age thresholds.
type PolicyConfig struct {
	WarnAfterDays   int // Age at which owners start receiving reminders
	DeleteAfterDays int // Age at which keys are revoked
	RunCadenceDays  int // How often the scheduler runs the sweep
}

// NotifyConfig holds notification transport configuration.
type NotifyConfig struct {
	SenderAddress  string // SES verified sender
	Region         string // Region SES (and the digest topic) live in
	SupportAddress string // Contact address included in notification text
	DigestTopicARN string // Optional SNS topic for the post-run admin digest
}

// AccountConfig identifies one account to sweep via an assumed role.
type AccountConfig struct {
	RoleARN    string
	ExternalID string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Policy: PolicyConfig{
			WarnAfterDays:   getEnvInt("KEYSWEEP_WARN_AFTER_DAYS", DefaultWarnAfterDays),
			DeleteAfterDays: getEnvInt("KEYSWEEP_DELETE_AFTER_DAYS", DefaultDeleteAfterDays),
			RunCadenceDays:  getEnvInt("KEYSWEEP_RUN_CADENCE_DAYS", DefaultRunCadenceDays),
		},
		Notify: NotifyConfig{
			SenderAddress:  getEnv("KEYSWEEP_SENDER_ADDRESS", ""),
			Region:         getEnv("KEYSWEEP_NOTIFICATION_REGION", "us-east-1"),
			SupportAddress: getEnv("KEYSWEEP_SUPPORT_ADDRESS", ""),
			DigestTopicARN: getEnv("KEYSWEEP_DIGEST_TOPIC_ARN", ""),
		},
		AccountProfiles: parseProfiles(getEnv("KEYSWEEP_ACCOUNT_PROFILES", "")),
		Accounts:        parseAccounts(getEnv("KEYSWEEP_ACCOUNTS", "")),
		ListWorkers:     getEnvInt("KEYSWEEP_LIST_WORKERS", DefaultListWorkers),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would make the sweep
// misclassify keys. Errors here are fatal: the run refuses to start.
func (c *Config) Validate() error {
	if c.Policy.WarnAfterDays < 0 {
		return fmt.Errorf("warn threshold must be >= 0 days, got %d", c.Policy.WarnAfterDays)
	}
	if c.Policy.DeleteAfterDays <= c.Policy.WarnAfterDays {
		return fmt.Errorf("delete threshold (%d days) must be greater than warn threshold (%d days)",
			c.Policy.DeleteAfterDays, c.Policy.WarnAfterDays)
	}
	if c.Policy.RunCadenceDays < 1 {
		return fmt.Errorf("run cadence must be >= 1 day, got %d", c.Policy.RunCadenceDays)
	}
	if c.Notify.SenderAddress == "" {
		return fmt.Errorf("KEYSWEEP_SENDER_ADDRESS is required")
	}
	if c.Notify.Region == "" {
		return fmt.Errorf("KEYSWEEP_NOTIFICATION_REGION is required")
	}
	if c.ListWorkers < 1 {
		return fmt.Errorf("list workers must be >= 1, got %d", c.ListWorkers)
	}
	return nil
}

// ProfileLabel returns the configured display label for an account, falling
// back to the raw account ID when none is configured.
func (c *Config) ProfileLabel(accountID string) string {
	if label, ok := c.AccountProfiles[accountID]; ok {
		return label
	}
	return accountID
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// parseProfiles parses a comma-separated list of accountID=label pairs.
func parseProfiles(s string) map[string]string {
	profiles := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, label, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		label = strings.TrimSpace(label)
		if id != "" && label != "" {
			profiles[id] = label
		}
	}
	return profiles
}

// parseAccounts parses a comma-separated list of roleARN[|externalID]
// entries. An empty list means the default credential chain.
func parseAccounts(s string) []AccountConfig {
	var accounts []AccountConfig
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		roleARN, externalID, _ := strings.Cut(entry, "|")
		accounts = append(accounts, AccountConfig{
			RoleARN:    strings.TrimSpace(roleARN),
			ExternalID: strings.TrimSpace(externalID),
		})
	}
	return accounts
}
