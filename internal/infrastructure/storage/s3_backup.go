// Package storage uploads backup archives to object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/netbill/backend/internal/domain/ops"
	infraconfig "github.com/netbill/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ ops.BackupStorage = (*S3BackupStorage)(nil)

// S3BackupStorage stores backup archives in an S3 bucket. Any
// S3-compatible backend works through the Endpoint setting (AWS S3,
// MinIO, RustFS).
type S3BackupStorage struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewS3BackupStorage creates a backup store from configuration
func NewS3BackupStorage(cfg infraconfig.BackupConfig, logger *zap.Logger) (*S3BackupStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("backup bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("backup credentials are required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			// Custom endpoints are usually MinIO-style and need path
			// addressing instead of virtual-hosted buckets.
			o.UsePathStyle = true
		}
	})

	return &S3BackupStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

// Upload writes the archive under the given key and returns its location
func (s *S3BackupStorage) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("backup key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Info("Backup uploaded",
		zap.String("location", location),
		zap.Int("bytes", len(data)),
	)
	return location, nil
}
