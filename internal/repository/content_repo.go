package repository

import (
	"context"
	"strings"

	"github.com/modvault/modvault-backend/internal/domain"
	"gorm.io/gorm"
)

// ListParams 목록 조회 조건
type ListParams struct {
	Status     domain.Status // empty = any
	LiveOnly   bool          // public read paths
	CategoryID *uint64
	Query      string // LIKE over title and the table's search columns
	Page       int
	Limit      int
}

// ContentRepository per-table content data access (apps, games, blogs)
type ContentRepository[T any] interface {
	Create(ctx context.Context, record *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	FindBySlug(ctx context.Context, slug string, liveOnly bool) (*T, error)
	List(ctx context.Context, params ListParams) ([]*T, int64, error)
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id string) error
	WithTx(tx *gorm.DB) ContentRepository[T]
	Table() string
}

type contentRepository[T any] struct {
	db            *gorm.DB
	table         string
	searchColumns []string
}

// NewAppRepository creates the apps repository
func NewAppRepository(db *gorm.DB) ContentRepository[domain.App] {
	return &contentRepository[domain.App]{db: db, table: "apps", searchColumns: []string{"description", "developer"}}
}

// NewGameRepository creates the games repository
func NewGameRepository(db *gorm.DB) ContentRepository[domain.Game] {
	return &contentRepository[domain.Game]{db: db, table: "games", searchColumns: []string{"description", "developer"}}
}

// NewBlogRepository creates the blogs repository
func NewBlogRepository(db *gorm.DB) ContentRepository[domain.Blog] {
	return &contentRepository[domain.Blog]{db: db, table: "blogs", searchColumns: []string{"excerpt"}}
}

func (r *contentRepository[T]) WithTx(tx *gorm.DB) ContentRepository[T] {
	return &contentRepository[T]{db: tx, table: r.table, searchColumns: r.searchColumns}
}

func (r *contentRepository[T]) Table() string {
	return r.table
}

func (r *contentRepository[T]) Create(ctx context.Context, record *T) error {
	return translate("create", r.table, r.db.WithContext(ctx).Create(record).Error)
}

func (r *contentRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate("find", r.table, err)
	}
	return &record, nil
}

func (r *contentRepository[T]) FindBySlug(ctx context.Context, slug string, liveOnly bool) (*T, error) {
	var record T
	query := r.db.WithContext(ctx).Where("slug = ?", slug)
	if liveOnly {
		query = query.Where("status = ?", domain.StatusPublished)
	}
	if err := query.First(&record).Error; err != nil {
		return nil, translate("find", r.table, err)
	}
	return &record, nil
}

func (r *contentRepository[T]) List(ctx context.Context, params ListParams) ([]*T, int64, error) {
	var records []*T
	var total int64

	query := r.db.WithContext(ctx).Model(new(T))
	switch {
	case params.LiveOnly:
		query = query.Where("status = ?", domain.StatusPublished)
	case params.Status != "":
		query = query.Where("status = ?", params.Status)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		like := "%" + q + "%"
		conds := []string{"title LIKE ?"}
		args := []interface{}{like}
		for _, col := range r.searchColumns {
			conds = append(conds, col+" LIKE ?")
			args = append(args, like)
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count", r.table, err)
	}

	offset := (params.Page - 1) * params.Limit
	if offset < 0 {
		offset = 0
	}
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(params.Limit).Find(&records).Error; err != nil {
		return nil, 0, translate("list", r.table, err)
	}
	return records, total, nil
}

// Update writes every column, so cleared fields such as scheduled_at are persisted
func (r *contentRepository[T]) Update(ctx context.Context, record *T) error {
	err := r.db.WithContext(ctx).Model(record).Select("*").Omit("id", "created_at").Updates(record).Error
	return translate("update", r.table, err)
}

func (r *contentRepository[T]) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return translate("delete", r.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete", r.table, gorm.ErrRecordNotFound)
	}
	return nil
}
