package domain

// Blog 블로그 게시글 (예약 발행 지원)
type Blog struct {
	ContentBase
	Content        string  `gorm:"column:content;type:mediumtext" json:"content"`
	Excerpt        string  `gorm:"column:excerpt;type:text" json:"excerpt"`
	CoverPath      string  `gorm:"column:cover_path;size:500" json:"cover_path"`
	CategoryID     *uint64 `gorm:"column:category_id;index" json:"category_id,omitempty"`
	AuthorID       string  `gorm:"column:author_id;size:64" json:"author_id"`
	SEOTitle       string  `gorm:"column:seo_title;size:255" json:"seo_title"`
	SEODescription string  `gorm:"column:seo_description;size:500" json:"seo_description"`
	SEOKeywords    string  `gorm:"column:seo_keywords;size:500" json:"seo_keywords"`
}

func (Blog) TableName() string {
	return "blogs"
}

func (Blog) Type() ContentType {
	return ContentTypeBlog
}

// Snapshot returns the versioned text fields
func (b *Blog) Snapshot() Snapshot {
	return Snapshot{Title: b.Title, Content: b.Content, Excerpt: b.Excerpt}
}

// Apply copies a snapshot back into the editable fields (not persisted)
func (b *Blog) Apply(s Snapshot) {
	b.Title = s.Title
	b.Content = s.Content
	b.Excerpt = s.Excerpt
}
