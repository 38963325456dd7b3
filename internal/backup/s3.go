package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type S3Options struct {
	Bucket string
	Prefix string
	Region string
	// BaseEndpoint points the client at an S3-compatible server such as
	// MinIO. Path-style addressing is used when it is set.
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Target uploads snapshots to a bucket under Prefix.
type S3Target struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Target(ctx context.Context, o S3Options) (*S3Target, error) {
	if o.Bucket == "" {
		return nil, errors.New("s3 backup: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 backup: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	})

	return &S3Target{client: client, bucket: o.Bucket, prefix: o.Prefix}, nil
}

func (t *S3Target) Name() string { return "s3:" + t.bucket }

// Key returns the object key for a snapshot name.
func (t *S3Target) Key(name string) string {
	return t.prefix + name
}

func (t *S3Target) Put(ctx context.Context, name string, r io.ReadSeeker) error {
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(t.Key(name)),
		Body:        r,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", t.Key(name), err)
	}
	return nil
}
