// Package storage provides blob store implementations for image attachments.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"alphaboard/internal/config"
)

// signedURLTTL bounds how long a retrieval URL stays valid.
const signedURLTTL = 15 * time.Minute

// MinioStore keeps attachment payloads in an S3-compatible bucket. Objects
// are keyed by random UUID; the key is what the attachment rows persist.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint and makes sure the
// bucket exists.
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.BlobEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.BlobAccessKey, cfg.BlobSecretKey, ""),
		Secure: cfg.BlobUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to blob store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BlobBucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", cfg.BlobBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BlobBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", cfg.BlobBucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.BlobBucket}, nil
}

func (s *MinioStore) Store(ctx context.Context, contentType string, payload []byte) (string, error) {
	key := uuid.NewString()
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("storing object: %w", err)
	}
	return key, nil
}

func (s *MinioStore) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, signedURLTTL, nil)
	if err != nil {
		return "", fmt.Errorf("signing url for %q: %w", key, err)
	}
	return u.String(), nil
}
