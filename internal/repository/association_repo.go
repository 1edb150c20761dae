package repository

import (
	"context"

	"github.com/modvault/modvault-backend/internal/domain"
	"gorm.io/gorm"
)

const associationTable = "content_associations"

// AssociationRepository mod features, screenshots and tags keyed to a content record
type AssociationRepository interface {
	Replace(ctx context.Context, ct domain.ContentType, contentID string, kind domain.AssociationKind, items []string) error
	List(ctx context.Context, ct domain.ContentType, contentID string, kind domain.AssociationKind) ([]string, error)
	ListAll(ctx context.Context, ct domain.ContentType, contentID string) (map[domain.AssociationKind][]string, error)
	DeleteAll(ctx context.Context, ct domain.ContentType, contentID string) error
	WithTx(tx *gorm.DB) AssociationRepository
}

type associationRepository struct {
	db *gorm.DB
}

// NewAssociationRepository creates a new AssociationRepository
func NewAssociationRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository{db: db}
}

func (r *associationRepository) WithTx(tx *gorm.DB) AssociationRepository {
	return &associationRepository{db: tx}
}

// Replace deletes the stored set for (ct, contentID, kind) and inserts items.
// Ordered kinds get position = index. Callers wrap this in a transaction.
func (r *associationRepository) Replace(ctx context.Context, ct domain.ContentType, contentID string, kind domain.AssociationKind, items []string) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("content_type = ? AND content_id = ? AND kind = ?", ct, contentID, kind).
		Delete(&domain.ContentAssociation{}).Error; err != nil {
		return translate("replace", associationTable, err)
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]domain.ContentAssociation, 0, len(items))
	for i, item := range items {
		row := domain.ContentAssociation{
			ContentType: ct,
			ContentID:   contentID,
			Kind:        kind,
			Payload:     item,
		}
		if kind.Ordered() {
			pos := i
			row.Position = &pos
		}
		rows = append(rows, row)
	}
	return translate("replace", associationTable, db.CreateInBatches(rows, 100).Error)
}

func (r *associationRepository) List(ctx context.Context, ct domain.ContentType, contentID string, kind domain.AssociationKind) ([]string, error) {
	var payloads []string
	err := r.db.WithContext(ctx).Model(&domain.ContentAssociation{}).
		Where("content_type = ? AND content_id = ? AND kind = ?", ct, contentID, kind).
		Order("position ASC, id ASC").
		Pluck("payload", &payloads).Error
	if err != nil {
		return nil, translate("list", associationTable, err)
	}
	return payloads, nil
}

func (r *associationRepository) ListAll(ctx context.Context, ct domain.ContentType, contentID string) (map[domain.AssociationKind][]string, error) {
	var rows []domain.ContentAssociation
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", ct, contentID).
		Order("kind ASC, position ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list", associationTable, err)
	}

	result := make(map[domain.AssociationKind][]string)
	for _, row := range rows {
		result[row.Kind] = append(result[row.Kind], row.Payload)
	}
	return result, nil
}

func (r *associationRepository) DeleteAll(ctx context.Context, ct domain.ContentType, contentID string) error {
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", ct, contentID).
		Delete(&domain.ContentAssociation{}).Error
	return translate("delete", associationTable, err)
}
