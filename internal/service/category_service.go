package service

import (
	"context"
	"strings"

	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/internal/slug"
)

// CategoryService category listing and creation
type CategoryService struct {
	repo  repository.CategoryRepository
	slugs *slug.Resolver
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(repo repository.CategoryRepository, slugs *slug.Resolver) *CategoryService {
	return &CategoryService{repo: repo, slugs: slugs}
}

// List typ "" lists every type; "apps" and "app" are both accepted
func (s *CategoryService) List(ctx context.Context, typ string) ([]*domain.Category, error) {
	if typ == "" {
		return s.repo.List(ctx, "")
	}
	ct, ok := domain.ParseContentType(typ)
	if !ok {
		return nil, common.NewValidationError("type", "unknown content type %q", typ)
	}
	return s.repo.List(ctx, ct)
}

// Create resolves a unique slug in categories
func (s *CategoryService) Create(ctx context.Context, req *domain.CreateCategoryRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	ct, ok := domain.ParseContentType(string(req.ContentType))
	if !ok {
		return nil, common.NewValidationError("content_type", "unknown content type %q", req.ContentType)
	}

	slugValue, err := s.slugs.Resolve(ctx, name, "categories", "")
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name, Slug: slugValue, ContentType: ct, OrderNum: req.OrderNum}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
