// Package blob provides the content-addressed blob store on MinIO (or any
// S3-compatible object store).
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// DefaultBucket is the bucket documents are stored in.
const DefaultBucket = "corpus-docs"

// metadataFilename is the user metadata key carrying the upload filename.
const metadataFilename = "Filename"

// Config holds configuration for the MinIO blob store.
type Config struct {
	// Endpoint is the host:port of the MinIO server (required).
	Endpoint string

	// AccessKey and SecretKey authenticate against the server.
	AccessKey string
	SecretKey string

	// Bucket is the target bucket (default: corpus-docs).
	Bucket string

	// UseSSL enables TLS.
	UseSSL bool
}

// Store keeps document blobs in a single bucket, keyed by content hash.
type Store struct {
	client *minio.Client
	bucket string
}

// New creates the blob store and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("blob: endpoint is required")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("blob: check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("blob: create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Put stores content under the ref. Refs are content hashes, so overwriting
// an existing ref rewrites identical bytes.
func (s *Store) Put(ctx context.Context, ref string, content []byte, contentType, filename string) error {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{metadataFilename: filename},
	}

	_, err := s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(content), int64(len(content)), opts)
	if err != nil {
		return fmt.Errorf("blob: put %s: %w", ref, err)
	}
	return nil
}

// Get returns the blob or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, ref string) (*domain.Blob, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", ref, err)
	}
	defer obj.Close()

	// GetObject is lazy; missing keys surface on Stat or first read.
	info, err := obj.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("blob: %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("blob: stat %s: %w", ref, err)
	}

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("blob: read %s: %w", ref, err)
	}

	return &domain.Blob{
		Content:     content,
		ContentType: info.ContentType,
		Filename:    info.UserMetadata[metadataFilename],
	}, nil
}

// Exists reports whether the ref is present.
func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, ref, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("blob: stat %s: %w", ref, err)
	}
	return true, nil
}

// Delete removes the blob. Missing refs are ignored so a lost
// reference-count race can never double-free.
func (s *Store) Delete(ctx context.Context, ref string) error {
	err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("blob: delete %s: %w", ref, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
