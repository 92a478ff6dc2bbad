package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider mirrors objects to an AWS S3 bucket. Credentials come from the
// default AWS chain, optionally narrowed to a shared-config profile.
type S3Provider struct {
	client *s3.Client
	bucket string
}

// NewS3Provider loads the AWS configuration and verifies the bucket is
// reachable, so a misconfigured mirror fails the run at startup instead of
// on the first cycle.
func NewS3Provider(ctx context.Context, bucket, profile, region string) (*S3Provider, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("head S3 bucket %q: %w", bucket, err)
	}

	return &S3Provider{client: client, bucket: bucket}, nil
}

// Put uploads data under key.
func (p *S3Provider) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err)
	}
	return nil
}
