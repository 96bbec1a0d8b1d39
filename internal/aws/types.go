// Package aws provides AWS API client functionality.
package aws

import "time"

// User represents an IAM user (an identity that can own access keys).
type User struct {
	UserName         string
	UserID           string
	ARN              string
	CreateDate       time.Time
	PasswordLastUsed *time.Time
}

// HasInteractiveLogin returns true if the user has signed in to the console
// at least once. Accounts that never did are almost always bots or service
// identities.
func (u User) HasInteractiveLogin() bool {
	return u.PasswordLastUsed != nil
}

// AccessKey represents a programmatic access key belonging to an IAM user.
type AccessKey struct {
	AccessKeyID string
	UserName    string
	Active      bool
	CreateDate  time.Time
}

// AgeDays returns the whole days elapsed since the key was created.
// Never negative, even if the provider clock is ahead of ours.
func (k AccessKey) AgeDays(now time.Time) int {
	d := now.Sub(k.CreateDate)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
