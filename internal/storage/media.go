package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores post media and returns a servable URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (string, error)
}

// MinioUploader is an S3-compatible Uploader.
type MinioUploader struct {
	client *minio.Client
	bucket string
}

// NewMinioUploader builds an uploader, or nil when no endpoint is
// configured so post creation still works without media.
func NewMinioUploader(endpoint, accessKey, secretKey, bucket string, useSSL bool) *MinioUploader {
	if endpoint == "" || bucket == "" {
		log.Println("media storage disabled: missing S3 config")
		return nil
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Printf("media storage disabled: %v", err)
		return nil
	}
	return &MinioUploader{client: client, bucket: bucket}
}

// Upload stores the object under a random key, keeping the extension.
func (u *MinioUploader) Upload(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (string, error) {
	key := uuid.NewString() + path.Ext(filename)
	_, err := u.client.PutObject(ctx, u.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/media/%s", key), nil
}
