package sweeper

import "time"

// Report summarizes one sweep. Built fresh each run, returned to the caller
// and discarded; nothing in it is read back by later runs.
type Report struct {
	AccountID    string `json:"account_id"`
	AccountLabel string `json:"account_label"`
	DryRun       bool   `json:"dry_run"`
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at"`

	IdentitiesScanned int `json:"identities_scanned"`
	IdentitiesSkipped int `json:"identities_skipped"`
	KeysInventoried   int `json:"keys_inventoried"`

	WarnBatches          int `json:"warn_batches"`
	DeleteBatches        int `json:"delete_batches"`
	NotificationsSent    int `json:"notifications_sent"`
	NotificationFailures int `json:"notification_failures"`
	KeysDeleted          int `json:"keys_deleted"`
	DeleteFailures       int `json:"delete_failures"`

	Deleted           []DeletedKey `json:"deleted,omitempty"`
	SkippedIdentities []string     `json:"skipped_identities,omitempty"`
}

// DeletedKey records one revoked key for the report and the admin digest.
type DeletedKey struct {
	Owner       string `json:"owner"`
	AccessKeyID string `json:"access_key_id"`
	CreatedOn   string `json:"created_on"`
}

// NewReport creates an empty report stamped with the start time.
func NewReport(dryRun bool, startedAt time.Time) *Report {
	return &Report{
		DryRun:    dryRun,
		StartedAt: startedAt.Format(time.RFC3339),
	}
}
