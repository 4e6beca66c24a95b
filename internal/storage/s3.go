package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sbilibin2017/gw-recipe-book/internal/logger"
)

// S3Config describes an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	Region     string
	Endpoint   string // Empty for AWS
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicURL  string // Base URL objects are served from
	PathPrefix string // Optional key prefix, e.g. "recipes/"
}

// ObjectClient is the part of the S3 client used by S3Store.
type ObjectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads images to a bucket.
type S3Store struct {
	client ObjectClient
	cfg    S3Config
}

// NewS3Store builds an S3 client from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client ObjectClient, cfg S3Config) *S3Store {
	return &S3Store{client: client, cfg: cfg}
}

// Save uploads r under name and returns the object's public URL.
func (s *S3Store) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := s.cfg.PathPrefix + name

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})

	logger.Log.Infow(
		"upload", key,
		"bucket", s.cfg.Bucket,
		"content_type", contentType,
		"error", err,
	)

	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return strings.TrimRight(s.cfg.PublicURL, "/") + "/" + key, nil
}

// Delete removes the object stored under name.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	key := s.cfg.PathPrefix + name

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})

	logger.Log.Infow(
		"delete upload", key,
		"bucket", s.cfg.Bucket,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
