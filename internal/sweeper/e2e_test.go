//go:build e2e
// +build e2e

package sweeper

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/keysweep/keysweep-aws/internal/aws"
)

// E2E tests run against real AWS APIs. They always force a dry run so that
// nothing is emailed and no key is ever deleted.
//
// To run:
//
//	KEYSWEEP_E2E_RUN=true go test -tags=e2e -v ./internal/sweeper/...
//
// Required environment variables:
//
//	KEYSWEEP_E2E_RUN=true
//
// Optional environment variables:
//
//	KEYSWEEP_E2E_ROLE_ARN=arn:aws:iam::123456789012:role/KeysweepRole
//	KEYSWEEP_E2E_EXTERNAL_ID=external-id-if-needed

func getE2EClient(t *testing.T) *aws.AWSClient {
	t.Helper()

	if strings.ToLower(os.Getenv("KEYSWEEP_E2E_RUN")) != "true" {
		t.Skip("KEYSWEEP_E2E_RUN=true not set, skipping e2e test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	roleARN := strings.TrimSpace(os.Getenv("KEYSWEEP_E2E_ROLE_ARN"))
	if roleARN != "" {
		client, err := aws.NewClientWithRole(ctx, roleARN, strings.TrimSpace(os.Getenv("KEYSWEEP_E2E_EXTERNAL_ID")))
		if err != nil {
			t.Fatalf("failed to create assume-role client: %v", err)
		}
		return client
	}

	client, err := aws.NewClient(ctx)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestE2E_DryRunSweep(t *testing.T) {
	client := getE2EClient(t)

	cfg := Config{
		WarnAfterDays:   90,
		DeleteAfterDays: 91,
		RunCadenceDays:  1,
		DryRun:          true,
	}
	s, err := New(cfg, client, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create sweeper: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("failed to sweep: %v", err)
	}

	if !report.DryRun {
		t.Fatal("report should be flagged as dry run")
	}
	if len(report.AccountID) != 12 {
		t.Errorf("account_id should be 12 digits, got %q", report.AccountID)
	}
	if report.AccountLabel == "" {
		t.Error("account_label should not be empty")
	}
	if report.CompletedAt == "" {
		t.Fatal("completed_at should not be empty")
	}
	if _, err := time.Parse(time.RFC3339, report.CompletedAt); err != nil {
		t.Fatalf("completed_at is not RFC3339: %v", err)
	}
	if report.IdentitiesScanned < 0 || report.KeysInventoried < 0 {
		t.Fatalf("negative counters: scanned=%d inventoried=%d", report.IdentitiesScanned, report.KeysInventoried)
	}
	if report.KeysDeleted != 0 || report.NotificationsSent != 0 {
		t.Fatalf("dry run must not act: deleted=%d sent=%d", report.KeysDeleted, report.NotificationsSent)
	}

	data, _ := json.MarshalIndent(report, "", "  ")
	t.Logf("sweep complete; identities=%d keys=%d\n%s", report.IdentitiesScanned, report.KeysInventoried, string(data))
}

func TestE2E_ReportValidJSON(t *testing.T) {
	client := getE2EClient(t)

	cfg := Config{
		WarnAfterDays:   90,
		DeleteAfterDays: 91,
		DryRun:          true,
	}
	s, err := New(cfg, client, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create sweeper: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("failed to sweep: %v", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	required := []string{"account_id", "dry_run", "started_at", "completed_at", "identities_scanned", "keys_inventoried"}
	for _, field := range required {
		if _, ok := decoded[field]; !ok {
			t.Errorf("missing required report field: %s", field)
		}
	}
}
