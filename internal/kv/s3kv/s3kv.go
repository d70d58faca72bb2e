// Package s3kv stores board documents as objects in an S3-compatible bucket
// (AWS S3, MinIO and similar).
package s3kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dyluth/kanban/pkg/persist"
)

// Config holds the connection settings for a bucket.
type Config struct {
	Endpoint     string `yaml:"endpoint" toml:"endpoint"`
	Region       string `yaml:"region" toml:"region"`
	Bucket       string `yaml:"bucket" toml:"bucket"`
	Prefix       string `yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	AccessKey    string `yaml:"access_key" toml:"access_key"`
	SecretKey    string `yaml:"secret_key" toml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style" toml:"use_path_style"`
}

// Validate checks the settings required to build a client.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("S3 endpoint is required")
	}
	if _, err := url.Parse(c.Endpoint); err != nil {
		return fmt.Errorf("invalid S3 endpoint: %w", err)
	}
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// objectKey maps a storage key to an object name under the prefix.
func (c Config) objectKey(key string) string {
	if c.Prefix == "" {
		return key + ".json"
	}
	return path.Join(c.Prefix, key+".json")
}

// Store reads and writes whole objects.
type Store struct {
	client *s3.Client
	cfg    Config
}

// New builds a client with static credentials and a fixed endpoint.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Store{client: client, cfg: cfg}, nil
}

// EnsureBucket fails if the configured bucket does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("bucket %s does not exist", s.cfg.Bucket)
		}
		return fmt.Errorf("error checking bucket: %w", err)
	}
	return nil
}

// Get downloads the object for key. A missing object is persist.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.cfg.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, persist.ErrNotFound
		}
		return nil, fmt.Errorf("error loading %s from S3: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", key, err)
	}
	return data, nil
}

// UpdatedAt returns the last-modified time of the object for key.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.cfg.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, persist.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("error reading metadata of %s: %w", key, err)
	}
	return aws.ToTime(resp.LastModified), nil
}

// Set uploads value as the object for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(s.cfg.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("error saving %s to S3: %w", key, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no connections that need closing.
func (s *Store) Close() error {
	return nil
}

// isNotFound reports whether err is an S3 missing-key or missing-bucket error.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	}
	return false
}

// Ensure Store implements persist.Backend and persist.Timestamped.
var (
	_ persist.Backend     = (*Store)(nil)
	_ persist.Timestamped = (*Store)(nil)
)
