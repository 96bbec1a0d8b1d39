package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// IAMAPI is the subset of the IAM client used by this package.
// Narrowed for mock injection in tests.
type IAMAPI interface {
	ListUsers(ctx context.Context, params *iam.ListUsersInput, optFns ...func(*iam.Options)) (*iam.ListUsersOutput, error)
	ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
	DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
}

// STSAPI is the subset of the STS client used by this package.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client provides access to the IAM and STS APIs.
type Client interface {
	// GetCallerIdentity returns the account ID of the current credentials.
	GetCallerIdentity(ctx context.Context) (string, error)

	// ListUsers returns every IAM user in the account, following pagination.
	ListUsers(ctx context.Context) ([]User, error)

	// ListAccessKeys returns the access keys belonging to the named user.
	ListAccessKeys(ctx context.Context, userName string) ([]AccessKey, error)

	// DeleteAccessKey deletes an access key. Deleting a key that no longer
	// exists is treated as success.
	DeleteAccessKey(ctx context.Context, userName, accessKeyID string) error
}

// AWSClient implements the Client interface using AWS SDK v2.
type AWSClient struct {
	iam IAMAPI
	sts STSAPI
}

// Option configures an AWSClient.
type Option func(*AWSClient)

// WithIAMClient sets a custom IAM client (for testing).
func WithIAMClient(api IAMAPI) Option {
	return func(c *AWSClient) {
		c.iam = api
	}
}

// WithSTSClient sets a custom STS client (for testing).
func WithSTSClient(api STSAPI) Option {
	return func(c *AWSClient) {
		c.sts = api
	}
}

// NewClient creates a new AWS client using the default credential chain.
func NewClient(ctx context.Context, opts ...Option) (*AWSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return newClient(cfg, opts...), nil
}

// NewClientWithRole creates a new AWS client that assumes the specified role.
func NewClientWithRole(ctx context.Context, roleARN, externalID string, opts ...Option) (*AWSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	stsClient := sts.NewFromConfig(cfg)
	creds := stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
		if externalID != "" {
			o.ExternalID = &externalID
		}
		o.Duration = 1 * time.Hour
	})

	cfg.Credentials = aws.NewCredentialsCache(creds)

	return newClient(cfg, opts...), nil
}

func newClient(cfg aws.Config, opts ...Option) *AWSClient {
	c := &AWSClient{}
	for _, opt := range opts {
		opt(c)
	}
	if c.iam == nil {
		c.iam = iam.NewFromConfig(cfg)
	}
	if c.sts == nil {
		c.sts = sts.NewFromConfig(cfg)
	}
	return c
}

// GetCallerIdentity returns the account ID of the current credentials.
func (c *AWSClient) GetCallerIdentity(ctx context.Context) (string, error) {
	output, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}
	return aws.ToString(output.Account), nil
}

// ListUsers returns every IAM user in the account, following pagination
// until the service reports no more pages.
func (c *AWSClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	paginator := iam.NewListUsersPaginator(c.iam, &iam.ListUsersInput{})

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}

		for _, u := range output.Users {
			users = append(users, User{
				UserName:         aws.ToString(u.UserName),
				UserID:           aws.ToString(u.UserId),
				ARN:              aws.ToString(u.Arn),
				CreateDate:       aws.ToTime(u.CreateDate),
				PasswordLastUsed: u.PasswordLastUsed,
			})
		}
	}

	return users, nil
}

// ListAccessKeys returns the access keys belonging to the named user.
// Key metadata is small but the API still pages, so the paginator is used.
func (c *AWSClient) ListAccessKeys(ctx context.Context, userName string) ([]AccessKey, error) {
	var keys []AccessKey
	paginator := iam.NewListAccessKeysPaginator(c.iam, &iam.ListAccessKeysInput{
		UserName: aws.String(userName),
	})

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing access keys for %s: %w", userName, err)
		}

		for _, k := range output.AccessKeyMetadata {
			keys = append(keys, AccessKey{
				AccessKeyID: aws.ToString(k.AccessKeyId),
				UserName:    aws.ToString(k.UserName),
				Active:      k.Status == iamtypes.StatusTypeActive,
				CreateDate:  aws.ToTime(k.CreateDate),
			})
		}
	}

	return keys, nil
}

// DeleteAccessKey deletes the given access key. NoSuchEntity means the key
// is already gone, which is the state we wanted.
func (c *AWSClient) DeleteAccessKey(ctx context.Context, userName, accessKeyID string) error {
	_, err := c.iam.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{
		UserName:    aws.String(userName),
		AccessKeyId: aws.String(accessKeyID),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchEntity") {
			return nil
		}
		return fmt.Errorf("deleting access key %s for %s: %w", accessKeyID, userName, err)
	}
	return nil
}
