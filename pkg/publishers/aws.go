package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves the SDK config for a publisher: region always,
// static credentials only when both keys are set.
func loadAWSConfig(ctx context.Context, auth AWSAuthConfig) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(auth.Region)}
	if auth.AccessKeyID != "" && auth.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(auth.AccessKeyID, auth.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// endpointOverride returns a pointer for the service BaseEndpoint option, or nil.
func endpointOverride(auth AWSAuthConfig) *string {
	if auth.Endpoint == "" {
		return nil
	}
	return aws.String(auth.Endpoint)
}
