package repository

import (
	"context"

	"github.com/modvault/modvault-backend/internal/domain"
	"gorm.io/gorm"
)

const categoryTable = "categories"

// CategoryRepository category data access
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Category, error)
	List(ctx context.Context, ct domain.ContentType) ([]*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint64) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate("find", categoryTable, err)
	}
	return &category, nil
}

// List ct empty = every type
func (r *categoryRepository) List(ctx context.Context, ct domain.ContentType) ([]*domain.Category, error) {
	var categories []*domain.Category
	query := r.db.WithContext(ctx)
	if ct != "" {
		query = query.Where("content_type = ?", ct)
	}
	if err := query.Order("order_num ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, translate("list", categoryTable, err)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return translate("create", categoryTable, r.db.WithContext(ctx).Create(category).Error)
}
