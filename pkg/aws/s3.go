package aws

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReportUploader copies local report files to an S3 bucket
type ReportUploader struct {
	S3Client S3API
	Bucket   string
	Prefix   string
}

// NewReportUploader creates an uploader for the region of cfg
func NewReportUploader(cfg aws.Config, bucket, prefix string) *ReportUploader {
	return &ReportUploader{
		S3Client: s3.NewFromConfig(cfg),
		Bucket:   bucket,
		Prefix:   prefix,
	}
}

// Key returns the object key for a local file
func (u *ReportUploader) Key(file string) string {
	return path.Join(u.Prefix, filepath.Base(file))
}

// Upload puts one file and returns its s3:// URI
func (u *ReportUploader) Upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open report %s: %w", file, err)
	}
	defer f.Close()

	key := u.Key(file)
	_, err = u.S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s/%s: %w", file, u.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.Bucket, key), nil
}
