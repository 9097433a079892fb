package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore keeps bootcamp photos in a MinIO bucket. Object names are
// the photo filenames stored on the Bootcamp documents.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewPhotoStore connects to MinIO and creates the bucket if it does
// not exist yet.
func NewPhotoStore(opts Options) (*PhotoStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("bucket create failed: %w", err)
		}
	}

	return &PhotoStore{client: client, bucket: opts.Bucket}, nil
}

// Save writes one photo object, overwriting any previous object with
// the same name. Two concurrent uploads for the same bootcamp race and
// the last write wins.
func (s *PhotoStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("photo upload to storage failed: %w", err)
	}
	return nil
}

// Remove deletes a photo object. Missing objects are not an error.
func (s *PhotoStore) Remove(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}
