package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the subset of the SNS client used by the topic notifier.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicNotifier publishes notifications to an SNS topic. Used for the
// post-run admin digest; the recipient passed to Send is the topic ARN.
type TopicNotifier struct {
	api SNSAPI
}

// TopicOption configures a TopicNotifier.
type TopicOption func(*TopicNotifier)

// WithSNSClient sets a custom SNS client (for testing).
func WithSNSClient(api SNSAPI) TopicOption {
	return func(n *TopicNotifier) {
		n.api = api
	}
}

// NewTopicNotifier creates an SNS-backed notifier in the given region.
func NewTopicNotifier(ctx context.Context, region string, opts ...TopicOption) (*TopicNotifier, error) {
	n := &TopicNotifier{}
	for _, opt := range opts {
		opt(n)
	}

	if n.api == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config for SNS: %w", err)
		}
		n.api = sns.NewFromConfig(cfg)
	}

	return n, nil
}

// Name returns the transport name.
func (n *TopicNotifier) Name() string {
	return "sns"
}

// Send publishes one message to the topic named by recipient.
func (n *TopicNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := n.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(recipient),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", recipient, err)
	}
	return nil
}
