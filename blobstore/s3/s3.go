// Package s3 implements blobstore.Store on Amazon S3.
package s3

import (
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store publishes artifacts to an S3 bucket via the upload manager.
type Store struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewStore creates an S3 store over an existing client.
// prefix is prepended to all keys (e.g. "index/").
func NewStore(client *s3.Client, bucket, prefix string) *Store {
	return &Store{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// NewStoreFromEnv creates an S3 store using the default AWS credential chain.
func NewStoreFromEnv(ctx context.Context, bucket, prefix string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path.Join(s.prefix, name)),
		Body:   r,
	})
	return err
}
