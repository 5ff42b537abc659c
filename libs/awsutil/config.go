package awsutil

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
)

// Config returns an AWS config for region. Static credentials are used when
// both keys are provided; otherwise credentials are left to the SDK's default
// chain (environment, shared config, then the Lambda or EC2 role).
// Retries are disabled: callers surface store errors instead of retrying.
func Config(region, accessKey, secretKey, token string) *aws.Config {
	cfg := &aws.Config{
		Region:     aws.String(region),
		MaxRetries: aws.Int(0),
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, token)
	}
	return cfg
}
