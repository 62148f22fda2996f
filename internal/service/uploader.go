package service

import (
	"context"
	"fmt"
	"io"

	a "cwt/backend-api/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/viper"
)

const minMultipartSize = 12 << 20

// Uploader pushes media objects to the S3 bucket backing the content
// library and the profile photos
type Uploader struct {
	S3 *a.S3Client
}

func NewUploader(s *a.S3Client) *Uploader {
	return &Uploader{S3: s}
}

// Upload stores the object under key and returns its public URL. Large
// bodies go through the multipart manager
func (u *Uploader) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        u.S3.Bucket,
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if size > minMultipartSize {
		uploader := manager.NewUploader(u.S3.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = uploader.Upload(ctx, input)
	} else {
		_, err = u.S3.C.PutObject(ctx, input)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload object to s3, %w", err)
	}

	return u.URL(key), nil
}

func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.S3.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: u.S3.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from s3, %w", err)
	}

	return nil
}

func (u *Uploader) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		*u.S3.Bucket, viper.GetString("aws.region"), key)
}
