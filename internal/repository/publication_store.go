package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/modvault/modvault-backend/internal/domain"
	"gorm.io/gorm"
)

// slugTables tables that carry a unique slug column
var slugTables = map[string]bool{
	"apps":       true,
	"games":      true,
	"blogs":      true,
	"categories": true,
}

// LiveEntry slug and last modification of a published record
type LiveEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// PublicationStore table-level queries shared by every content table:
// slug lookups, the scheduled-publish sweep and sitemap listing.
type PublicationStore struct {
	db *gorm.DB
}

// NewPublicationStore creates a new PublicationStore
func NewPublicationStore(db *gorm.DB) *PublicationStore {
	return &PublicationStore{db: db}
}

// WithTx returns a new PublicationStore with the given transaction
func (s *PublicationStore) WithTx(tx *gorm.DB) *PublicationStore {
	return &PublicationStore{db: tx}
}

func checkTable(table string) error {
	if !slugTables[table] {
		return fmt.Errorf("unknown slug table %q", table)
	}
	return nil
}

func checkContentTable(table string) error {
	if ct, ok := domain.ParseContentType(table); !ok || ct.Table() != table {
		return fmt.Errorf("unknown content table %q", table)
	}
	return nil
}

// SlugExists reports whether slug is used in table by a record other than excludeID
func (s *PublicationStore) SlugExists(ctx context.Context, table, slug, excludeID string) (bool, error) {
	if err := checkTable(table); err != nil {
		return false, translate("slug lookup", table, err)
	}

	query := s.db.WithContext(ctx).Table(table).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, translate("slug lookup", table, err)
	}
	return count > 0, nil
}

// PromoteDue publishes every scheduled row of table with scheduled_at <= now and
// returns the promoted IDs. Each row is updated under the same due condition as the
// select, so a row rescheduled or edited in between is left alone and not reported.
func (s *PublicationStore) PromoteDue(ctx context.Context, table string, now time.Time) ([]string, error) {
	if err := checkContentTable(table); err != nil {
		return nil, translate("promote", table, err)
	}

	const due = "status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?"
	cutoff := now.UTC()

	var promoted []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Table(table).
			Where(due, domain.StatusScheduled, cutoff).
			Order("scheduled_at ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		for _, id := range ids {
			res := tx.Table(table).
				Where("id = ?", id).
				Where(due, domain.StatusScheduled, cutoff).
				Updates(map[string]interface{}{
					"status":       domain.StatusPublished,
					"scheduled_at": nil,
					"updated_at":   cutoff,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				promoted = append(promoted, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate("promote", table, err)
	}
	return promoted, nil
}

// LiveEntries every published row of table, most recently updated first
func (s *PublicationStore) LiveEntries(ctx context.Context, table string) ([]LiveEntry, error) {
	if err := checkContentTable(table); err != nil {
		return nil, translate("live entries", table, err)
	}

	var entries []LiveEntry
	err := s.db.WithContext(ctx).Table(table).
		Select("slug, updated_at").
		Where("status = ?", domain.StatusPublished).
		Order("updated_at DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, translate("live entries", table, err)
	}
	return entries, nil
}

// Inconsistent rows whose status and scheduled_at disagree
func (s *PublicationStore) Inconsistent(ctx context.Context, table string) ([]domain.ContentBase, error) {
	if err := checkContentTable(table); err != nil {
		return nil, translate("consistency scan", table, err)
	}

	var rows []domain.ContentBase
	err := s.db.WithContext(ctx).Table(table).
		Where("(status = ? AND scheduled_at IS NULL) OR (status <> ? AND scheduled_at IS NOT NULL)",
			domain.StatusScheduled, domain.StatusScheduled).
		Find(&rows).Error
	if err != nil {
		return nil, translate("consistency scan", table, err)
	}
	return rows, nil
}
