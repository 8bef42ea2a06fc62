package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Sink stores media in an S3 bucket fronted by a CDN
type S3Sink struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Sink creates an S3-backed media sink
func NewS3Sink(region, bucket, baseURL string) (*S3Sink, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Sink{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload stores the blob under {category}/{userID}_{unixts}{ext} and
// returns the public CDN URL
func (s *S3Sink) Upload(ctx context.Context, data []byte, category, userID, filename string, progress ProgressFunc) (*UploadResult, error) {
	if progress != nil {
		progress(0)
	}

	extension := filepath.Ext(filename)
	if extension == "" {
		extension = ".jpg"
	}

	now := time.Now()
	key := fmt.Sprintf("%s/%s_%d%s", category, userID, now.Unix(), extension)

	putObjectInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(extension)),

		// Media blobs are immutable once written
		CacheControl: aws.String("max-age=86400"),

		Metadata: map[string]string{
			"user-id":           userID,
			"original-filename": filename,
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	}

	_, err := s.client.PutObject(ctx, putObjectInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	if progress != nil {
		progress(100)
	}

	return &UploadResult{
		Key:  key,
		URL:  fmt.Sprintf("%s/%s", s.baseURL, key),
		Size: int64(len(data)),
	}, nil
}

// Owns reports whether the URL is under our CDN base
func (s *S3Sink) Owns(url string) bool {
	return s.baseURL != "" && strings.HasPrefix(url, s.baseURL+"/")
}

// Delete removes the object behind a CDN URL. URLs not under our base
// are an error; callers should check Owns first.
func (s *S3Sink) Delete(ctx context.Context, url string) error {
	if !s.Owns(url) {
		return fmt.Errorf("url %q is not served from this sink", url)
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (s *S3Sink) CheckBucketAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", s.bucket, err)
	}

	return nil
}

var _ MediaSink = (*S3Sink)(nil)
