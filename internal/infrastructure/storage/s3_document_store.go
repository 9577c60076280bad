// Package storage provides object storage implementations for archiving
// rendered invoice documents.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	billingapp "github.com/kontor/backend/internal/application/billing"
	infraconfig "github.com/kontor/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3DocumentStore implements DocumentStore
var _ billingapp.DocumentStore = (*S3DocumentStore)(nil)

// S3DocumentStore archives invoice documents in an S3 bucket. It is
// compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3DocumentStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	endpoint  string
	logger    *zap.Logger
}

// S3DocumentStoreOption is a functional option for configuring S3DocumentStore
type S3DocumentStoreOption func(*S3DocumentStore)

// WithLogger sets a custom logger for S3DocumentStore
func WithLogger(logger *zap.Logger) S3DocumentStoreOption {
	return func(s *S3DocumentStore) {
		s.logger = logger
	}
}

// NewS3DocumentStore creates a new S3DocumentStore from configuration.
// It supports any S3-compatible storage backend.
func NewS3DocumentStore(cfg *infraconfig.StorageConfig, opts ...S3DocumentStoreOption) (*S3DocumentStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "eu-central-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := ""
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3DocumentStore{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		endpoint:  endpoint,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.keyPrefix == "" {
		store.keyPrefix = "invoices/"
	}

	return store, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3DocumentStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" (race with a concurrent startup)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// StoreInvoiceDocument uploads a rendered invoice document. The object key
// is derived from the invoice number, so re-archiving the same invoice
// overwrites the previous rendition.
func (s *S3DocumentStore) StoreInvoiceDocument(ctx context.Context, invoiceNumber string, content []byte) (*billingapp.StoredDocument, error) {
	if invoiceNumber == "" {
		return nil, errors.New("invoice number is required")
	}
	if len(content) == 0 {
		return nil, errors.New("document content is empty")
	}

	key := s.ObjectKey(invoiceNumber)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload invoice document: %w", err)
	}

	s.logger.Debug("invoice document archived",
		zap.String("invoice_number", invoiceNumber),
		zap.String("key", key),
	)

	return &billingapp.StoredDocument{
		DriveID: s.bucket,
		ItemID:  key,
		WebURL:  s.objectURL(key),
	}, nil
}

// ObjectKey returns the storage key for an invoice number
func (s *S3DocumentStore) ObjectKey(invoiceNumber string) string {
	return path.Join(s.keyPrefix, invoiceNumber+".pdf")
}

func (s *S3DocumentStore) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

// GetBucket returns the bucket name
func (s *S3DocumentStore) GetBucket() string {
	return s.bucket
}
