package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/modvault/modvault-backend/internal/common"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
	"github.com/modvault/modvault-backend/pkg/storage"
)

// BlobStore upload(file, bucket, folder) / exists(bucket)
type BlobStore interface {
	Upload(ctx context.Context, file storage.File, bucket, folder string) (*storage.UploadResult, error)
	Exists(ctx context.Context, bucket string) (bool, error)
}

// MediaService handles admin uploads into the configured buckets
type MediaService struct {
	store         BlobStore // nil when storage is disabled
	resolver      *storage.Resolver
	defaultBucket string
	maxSize       int64
	allowExts     map[string]bool
}

// NewMediaService creates a new MediaService; store may be nil
func NewMediaService(store BlobStore, resolver *storage.Resolver, defaultBucket string) *MediaService {
	if resolver == nil {
		resolver = storage.NewResolver(nil)
	}
	exts := map[string]bool{}
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".apk", ".xapk", ".zip"} {
		exts[ext] = true
	}
	return &MediaService{
		store:         store,
		resolver:      resolver,
		defaultBucket: defaultBucket,
		maxSize:       200 * 1024 * 1024, // 200MB
		allowExts:     exts,
	}
}

// Upload validates the target and stores the file under folder/<uuid><ext>
func (s *MediaService) Upload(ctx context.Context, name, contentType string, size int64, body io.Reader, bucket, folder string) (*storage.UploadResult, error) {
	if s.store == nil {
		return nil, common.ErrStorageDisabled
	}
	if bucket == "" {
		bucket = s.defaultBucket
	}
	if !s.resolver.Known(bucket) {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownBucket, bucket)
	}

	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	if size > s.maxSize {
		return nil, common.NewValidationError("file", "too large (max %dMB)", s.maxSize/(1024*1024))
	}
	ext := strings.ToLower(path.Ext(name))
	if !s.allowExts[ext] {
		return nil, common.NewValidationError("file", "unsupported file type %q", ext)
	}

	result, err := s.store.Upload(ctx, storage.File{Name: name, ContentType: contentType, Size: size, Body: body}, bucket, folder)
	if err != nil {
		mediaUploadsTotal.WithLabelValues(bucket, "error").Inc()
		return nil, err
	}
	mediaUploadsTotal.WithLabelValues(bucket, "ok").Inc()
	pkglogger.Info("media uploaded: %s/%s (%d bytes)", bucket, result.Path, result.Size)
	return result, nil
}

// Exists reports whether the bucket is reachable
func (s *MediaService) Exists(ctx context.Context, bucket string) (bool, error) {
	if s.store == nil {
		return false, common.ErrStorageDisabled
	}
	return s.store.Exists(ctx, bucket)
}

// cleanFolder relative folder without traversal
func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return "", nil
	}
	for _, part := range strings.Split(folder, "/") {
		if part == ".." || part == "." || part == "" {
			return "", common.NewValidationError("folder", "invalid folder %q", folder)
		}
	}
	return folder, nil
}
