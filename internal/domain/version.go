package domain

import "time"

// Snapshot editable text fields captured by a version
type Snapshot struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
}

// ContentVersion immutable audit snapshot; version numbers are gap-free per record
type ContentVersion struct {
	ID            uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentType   ContentType `gorm:"column:content_type;size:20;not null;uniqueIndex:uniq_content_version,priority:1" json:"content_type"`
	RecordID      string      `gorm:"column:record_id;type:char(36);not null;uniqueIndex:uniq_content_version,priority:2" json:"record_id"`
	VersionNumber uint        `gorm:"column:version_number;not null;uniqueIndex:uniq_content_version,priority:3" json:"version_number"`
	Title         string      `gorm:"column:title;size:255" json:"title"`
	Content       string      `gorm:"column:content;type:mediumtext" json:"content"`
	Excerpt       string      `gorm:"column:excerpt;type:text" json:"excerpt"`
	CreatedBy     string      `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt     time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ContentVersion) TableName() string { return "content_versions" }

// Snapshot returns the stored text fields
func (v *ContentVersion) Snapshot() Snapshot {
	return Snapshot{Title: v.Title, Content: v.Content, Excerpt: v.Excerpt}
}

// Changed reports whether any versioned field differs
func (s Snapshot) Changed(other Snapshot) bool {
	return s.Title != other.Title || s.Content != other.Content || s.Excerpt != other.Excerpt
}
