// Package minio implements blobstore.Store for MinIO and other S3-compatible
// object stores.
package minio

import (
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// Store publishes artifacts to a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a MinIO store over an existing client.
// prefix is prepended to all keys (e.g. "index/").
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, path.Join(s.prefix, name), r, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}
