package domain

import "time"

// Category 앱/게임/블로그 카테고리
type Category struct {
	ID          uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string      `gorm:"column:name;size:100;not null" json:"name"`
	Slug        string      `gorm:"column:slug;size:120;not null;uniqueIndex" json:"slug"`
	ContentType ContentType `gorm:"column:content_type;size:20;not null;index" json:"content_type"`
	OrderNum    int         `gorm:"column:order_num;default:0" json:"order_num"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// CreateCategoryRequest 카테고리 생성 요청
type CreateCategoryRequest struct {
	Name        string      `json:"name" binding:"required,max=100"`
	ContentType ContentType `json:"content_type" binding:"required"`
	OrderNum    int         `json:"order_num"`
}
