package migration

import (
	"github.com/modvault/modvault-backend/internal/domain"
	"gorm.io/gorm"
)

// Models every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&domain.Category{},
		&domain.App{},
		&domain.Game{},
		&domain.Blog{},
		&domain.ContentVersion{},
		&domain.ContentAssociation{},
	}
}

// Run executes AutoMigrate for every table and seeds categories if empty.
func Run(db *gorm.DB) error {
	// 1. AutoMigrate - 테이블 없으면 생성, 있으면 컬럼/인덱스 보강
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	// 2. Seed - categories 테이블이 비어있을 때만 기본 카테고리 삽입
	var count int64
	if err := db.Model(&domain.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return SeedCategories(db)
	}
	return nil
}

// DefaultCategories seed rows
func DefaultCategories() []domain.Category {
	return []domain.Category{
		// 앱
		{Name: "Tools", Slug: "tools", ContentType: domain.ContentTypeApp, OrderNum: 1},
		{Name: "Music & Audio", Slug: "music-audio", ContentType: domain.ContentTypeApp, OrderNum: 2},
		{Name: "Photography", Slug: "photography", ContentType: domain.ContentTypeApp, OrderNum: 3},
		{Name: "Productivity", Slug: "productivity", ContentType: domain.ContentTypeApp, OrderNum: 4},
		{Name: "Social", Slug: "social", ContentType: domain.ContentTypeApp, OrderNum: 5},
		// 게임
		{Name: "Action", Slug: "action", ContentType: domain.ContentTypeGame, OrderNum: 1},
		{Name: "Adventure", Slug: "adventure", ContentType: domain.ContentTypeGame, OrderNum: 2},
		{Name: "Puzzle", Slug: "puzzle", ContentType: domain.ContentTypeGame, OrderNum: 3},
		{Name: "Racing", Slug: "racing", ContentType: domain.ContentTypeGame, OrderNum: 4},
		{Name: "Strategy", Slug: "strategy", ContentType: domain.ContentTypeGame, OrderNum: 5},
		// 블로그
		{Name: "Guides", Slug: "guides", ContentType: domain.ContentTypeBlog, OrderNum: 1},
		{Name: "News", Slug: "news", ContentType: domain.ContentTypeBlog, OrderNum: 2},
	}
}

// SeedCategories inserts DefaultCategories
func SeedCategories(db *gorm.DB) error {
	categories := DefaultCategories()
	return db.CreateInBatches(&categories, 50).Error
}
