// Package object mirrors job outputs to an S3-compatible bucket.
package object

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage provides an S3-compatible storage backend using MinIO.
// Objects are stored under an optional key prefix.
type Storage struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewStorage creates a new Storage instance connected to the specified MinIO server.
// If the bucket does not exist, it will be created automatically.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName, prefix string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

// ObjectName returns the key used for filename inside subdir.
func ObjectName(prefix, subdir, filename string) string {
	return path.Join(prefix, filepath.ToSlash(subdir), filename)
}

// Save uploads src of the given size and returns the object key.
func (s *Storage) Save(ctx context.Context, subdir, filename, contentType string, src io.Reader, size int64) (string, error) {
	objectName := ObjectName(s.prefix, subdir, filename)

	_, err := s.client.PutObject(ctx, s.bucketName, objectName, src, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save object %s: %w", objectName, err)
	}

	return objectName, nil
}
