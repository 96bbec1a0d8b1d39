package aws

import (
	"testing"
	"time"
)

func time0() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestAccessKeyAgeDays(t *testing.T) {
	created := time0()

	key := AccessKey{AccessKeyID: "AKIA123", CreateDate: created}

	if got := key.AgeDays(created.AddDate(0, 0, 95)); got != 95 {
		t.Fatalf("expected age 95, got %d", got)
	}
	if got := key.AgeDays(created.Add(23 * time.Hour)); got != 0 {
		t.Fatalf("expected partial day to count as 0, got %d", got)
	}
	if got := key.AgeDays(created.Add(-time.Hour)); got != 0 {
		t.Fatalf("expected clock skew to clamp to 0, got %d", got)
	}
}

func TestUserHasInteractiveLogin(t *testing.T) {
	lastUsed := time0()

	human := User{UserName: "alice", PasswordLastUsed: &lastUsed}
	if !human.HasInteractiveLogin() {
		t.Fatalf("expected user with console login to count as interactive")
	}

	bot := User{UserName: "ci-deployer"}
	if bot.HasInteractiveLogin() {
		t.Fatalf("expected user without console login to be non-interactive")
	}
}
