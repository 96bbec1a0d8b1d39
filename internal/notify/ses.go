package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the subset of the SES v2 client used by the email notifier.
// Narrowed for mock injection in tests.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailNotifier sends notifications as plain-text email through SES.
type EmailNotifier struct {
	api    SESAPI
	sender string
}

// EmailOption configures an EmailNotifier.
type EmailOption func(*EmailNotifier)

// WithSESClient sets a custom SES client (for testing).
func WithSESClient(api SESAPI) EmailOption {
	return func(n *EmailNotifier) {
		n.api = api
	}
}

// NewEmailNotifier creates an SES-backed notifier sending from the given
// verified address in the given region.
func NewEmailNotifier(ctx context.Context, region, sender string, opts ...EmailOption) (*EmailNotifier, error) {
	if sender == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	n := &EmailNotifier{sender: sender}
	for _, opt := range opts {
		opt(n)
	}

	if n.api == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config for SES: %w", err)
		}
		n.api = sesv2.NewFromConfig(cfg)
	}

	return n, nil
}

// Name returns the transport name.
func (n *EmailNotifier) Name() string {
	return "ses"
}

// Send delivers one email to the recipient address.
func (n *EmailNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := n.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &sestypes.Body{
					Text: &sestypes.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", recipient, err)
	}
	return nil
}
