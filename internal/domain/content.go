package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentType identifies one of the content tables
type ContentType string

const (
	ContentTypeApp  ContentType = "app"
	ContentTypeGame ContentType = "game"
	ContentTypeBlog ContentType = "blog"
)

// Table returns the table that stores records of this type
func (t ContentType) Table() string {
	switch t {
	case ContentTypeApp:
		return "apps"
	case ContentTypeGame:
		return "games"
	case ContentTypeBlog:
		return "blogs"
	default:
		return ""
	}
}

// PathSegment is the public URL segment for this type (/apps/:slug, /blog/:slug)
func (t ContentType) PathSegment() string {
	if t == ContentTypeBlog {
		return "blog"
	}
	return t.Table()
}

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	return t.Table() != ""
}

// ParseContentType accepts both the type name and its table name
func ParseContentType(s string) (ContentType, bool) {
	for _, t := range []ContentType{ContentTypeApp, ContentTypeGame, ContentTypeBlog} {
		if s == string(t) || s == t.Table() {
			return t, true
		}
	}
	return "", false
}

// Status publication state of a content record
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
)

// AllowedStatuses apps and games never schedule
func (t ContentType) AllowedStatuses() []Status {
	if t == ContentTypeBlog {
		return []Status{StatusDraft, StatusPublished, StatusScheduled}
	}
	return []Status{StatusDraft, StatusPublished}
}

// Allows reports whether the status is valid for records of this type
func (t ContentType) Allows(s Status) bool {
	for _, allowed := range t.AllowedStatuses() {
		if allowed == s {
			return true
		}
	}
	return false
}

// ContentBase publication fields shared by apps, games and blogs
type ContentBase struct {
	ID          string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Title       string     `gorm:"column:title;size:255;not null" json:"title"`
	Slug        string     `gorm:"column:slug;size:255;not null;uniqueIndex" json:"slug"`
	Status      Status     `gorm:"column:status;size:20;not null;default:draft;index" json:"status"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at;index" json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the immutable record ID
func (b *ContentBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// IsLive only published records are visible on public read paths
func (b *ContentBase) IsLive() bool {
	return b.Status == StatusPublished
}

// Record is implemented by every content model through its embedded ContentBase
type Record interface {
	Base() *ContentBase
	Type() ContentType
}

// Base returns the shared publication fields
func (b *ContentBase) Base() *ContentBase {
	return b
}
