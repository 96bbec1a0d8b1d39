// Package notify provides the notification transports used by the sweeper.
package notify

import "context"

// Notifier delivers a rendered notification to a recipient. The recipient is
// transport-specific: an email address for the SES transport, a topic ARN
// for the SNS transport.
type Notifier interface {
	// Name returns the transport name, used in logs.
	Name() string

	// Send delivers one notification. Failures are returned, never retried
	// here: the next scheduled sweep re-derives and re-sends anything still
	// relevant.
	Send(ctx context.Context, recipient, subject, body string) error
}
