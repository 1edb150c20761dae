// Package storage is the blob store for uploaded media and the resolver that
// turns stored paths into public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
)

// ErrUnknownBucket bucket is not declared in storage.buckets
var ErrUnknownBucket = errors.New("unknown bucket")

// objectAPI subset of *s3.Client used here
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Client S3/R2/MinIO compatible blob store with several named buckets
type S3Client struct {
	client   objectAPI
	presign  *s3.PresignClient
	resolver *Resolver
}

// S3Config holds S3-compatible storage configuration
type S3Config struct {
	Endpoint        string // e.g. https://xxx.r2.cloudflarestorage.com
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool              // true for MinIO/R2
	Buckets         map[string]string // bucket name -> public base URL
}

// NewS3Client creates a new S3-compatible storage client
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if len(cfg.Buckets) == 0 {
		return nil, fmt.Errorf("storage: no buckets configured")
	}

	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}
	client := s3.New(s3.Options{}, opts)

	pkglogger.GetLogger().Info().
		Int("buckets", len(cfg.Buckets)).
		Str("endpoint", cfg.Endpoint).
		Msg("S3 storage client initialized")

	return &S3Client{
		client:   client,
		presign:  s3.NewPresignClient(client),
		resolver: NewResolver(cfg.Buckets),
	}, nil
}

// Resolver public URL resolver for the configured buckets
func (c *S3Client) Resolver() *Resolver {
	return c.resolver
}

// File an upload body with its metadata
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult contains the result of a file upload
type UploadResult struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Upload stores file under folder/<uuid><ext> in bucket and returns the stored path
func (c *S3Client) Upload(ctx context.Context, file File, bucket, folder string) (*UploadResult, error) {
	if !c.resolver.Known(bucket) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, bucket)
	}

	key := ObjectKey(folder, file.Name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file.Body,
		ContentType: aws.String(contentType),
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}
	if _, err := c.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 upload failed: %w", err)
	}

	return &UploadResult{
		Bucket:      bucket,
		Path:        key,
		URL:         c.resolver.Resolve(key, bucket),
		ContentType: contentType,
		Size:        file.Size,
	}, nil
}

// Exists reports whether the bucket is reachable with the configured credentials
func (c *S3Client) Exists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return false, nil
	}
	return false, fmt.Errorf("s3 head bucket failed: %w", err)
}

// Delete removes an object
func (c *S3Client) Delete(ctx context.Context, bucket, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if _, err := c.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

// PresignedURL generates a pre-signed URL for direct download of a private object
func (c *S3Client) PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if c.presign == nil {
		return "", fmt.Errorf("presign not available")
	}
	result, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}
	return result.URL, nil
}

// ObjectKey folder/<uuid><ext>; the original file name only contributes its extension
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	folder = strings.Trim(folder, "/")
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
