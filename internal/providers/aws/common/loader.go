package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultRegion is used when neither the credentials nor the connection name
// a home region.
const DefaultRegion = "us-east-1"

// StaticCredentials are the access keys stored on an AWS connection.
type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// AccountConfig is a verified AWS account: its SDK configuration plus the
// account ID resolved through STS.
type AccountConfig struct {
	AccountID string

	// Region is the home region.
	Region string

	Config aws.Config
}

// ForRegion clones the configuration with the target region set.
func (a *AccountConfig) ForRegion(region string) aws.Config {
	regional := a.Config
	regional.Region = region
	return regional
}

// Loader builds SDK configurations from static credentials. Only the
// supplied keys are used; shared config files and the environment are
// never consulted for credentials.
type Loader struct {
	factory ClientFactory
}

// NewLoader returns a loader backed by the real AWS SDK.
func NewLoader() *Loader {
	return &Loader{factory: NewClientSet}
}

// NewLoaderWithFactory returns a loader that uses f to create its
// ClientSet. Pass a mock factory in tests.
func NewLoaderWithFactory(f ClientFactory) *Loader {
	return &Loader{factory: f}
}

// Load builds the SDK configuration for creds and verifies it with STS
// GetCallerIdentity. An error means the credentials cannot be used at all.
func (l *Loader) Load(ctx context.Context, creds StaticCredentials) (*AccountConfig, error) {
	region := creds.Region
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken,
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	accountID, err := resolveAccountID(ctx, l.factory(cfg).STS)
	if err != nil {
		return nil, err
	}

	return &AccountConfig{
		AccountID: accountID,
		Region:    region,
		Config:    cfg,
	}, nil
}

// resolveAccountID calls STS GetCallerIdentity to retrieve the numeric AWS
// account ID for the credentials currently loaded in stsClient.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}
