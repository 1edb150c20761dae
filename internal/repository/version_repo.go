package repository

import (
	"context"
	"errors"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"gorm.io/gorm"
)

const versionTable = "content_versions"

// VersionRepository content version data access
type VersionRepository interface {
	Create(ctx context.Context, version *domain.ContentVersion) error
	FindByRecord(ctx context.Context, ct domain.ContentType, recordID string) ([]*domain.ContentVersion, error)
	FindByRecordAndVersion(ctx context.Context, ct domain.ContentType, recordID string, number uint) (*domain.ContentVersion, error)
	LatestVersion(ctx context.Context, ct domain.ContentType, recordID string) (uint, error)
	DeleteByRecord(ctx context.Context, ct domain.ContentType, recordID string) error
	WithTx(tx *gorm.DB) VersionRepository
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) WithTx(tx *gorm.DB) VersionRepository {
	return &versionRepository{db: tx}
}

func (r *versionRepository) Create(ctx context.Context, version *domain.ContentVersion) error {
	return translate("create", versionTable, r.db.WithContext(ctx).Create(version).Error)
}

// FindByRecord newest first
func (r *versionRepository) FindByRecord(ctx context.Context, ct domain.ContentType, recordID string) ([]*domain.ContentVersion, error) {
	var versions []*domain.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND record_id = ?", ct, recordID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, translate("list", versionTable, err)
	}
	return versions, nil
}

func (r *versionRepository) FindByRecordAndVersion(ctx context.Context, ct domain.ContentType, recordID string, number uint) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND record_id = ? AND version_number = ?", ct, recordID, number).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	if err != nil {
		return nil, translate("find", versionTable, err)
	}
	return &version, nil
}

// LatestVersion highest version number for the record, 0 when none exist
func (r *versionRepository) LatestVersion(ctx context.Context, ct domain.ContentType, recordID string) (uint, error) {
	var maxVersion *uint
	err := r.db.WithContext(ctx).Model(&domain.ContentVersion{}).
		Where("content_type = ? AND record_id = ?", ct, recordID).
		Select("MAX(version_number)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, translate("latest", versionTable, err)
	}
	if maxVersion == nil {
		return 0, nil
	}
	return *maxVersion, nil
}

func (r *versionRepository) DeleteByRecord(ctx context.Context, ct domain.ContentType, recordID string) error {
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND record_id = ?", ct, recordID).
		Delete(&domain.ContentVersion{}).Error
	return translate("delete", versionTable, err)
}
