package domain

import "time"

// ScheduleInput either an absolute scheduled_at or a date+time pair read in time_zone
type ScheduleInput struct {
	ScheduledAt   *time.Time `json:"scheduled_at"`
	ScheduledDate string     `json:"scheduled_date"` // 2006-01-02
	ScheduledTime string     `json:"scheduled_time"` // 15:04
	TimeZone      string     `json:"time_zone"`      // IANA, e.g. Asia/Seoul
}

// IsZero no schedule supplied
func (s ScheduleInput) IsZero() bool {
	return s.ScheduledAt == nil && s.ScheduledDate == "" && s.ScheduledTime == ""
}

// AssociationInput dependent sets sent with a save; nil slices leave the stored set alone
type AssociationInput struct {
	ModFeatures []string `json:"mod_features" binding:"omitempty,max=100"`
	Screenshots []string `json:"screenshots" binding:"omitempty,max=50"`
	Tags        []string `json:"tags" binding:"omitempty,max=50"`
}

// CreatePackageRequest 앱/게임 생성 요청
type CreatePackageRequest struct {
	Title          string  `json:"title" binding:"max=255"`
	Status         Status  `json:"status"`
	PackageName    string  `json:"package_name" binding:"max=255"`
	Version        string  `json:"version" binding:"max=50"`
	Size           string  `json:"size" binding:"max=50"`
	Developer      string  `json:"developer" binding:"max=255"`
	Description    string  `json:"description"`
	CategoryID     *uint64 `json:"category_id"`
	IconPath       string  `json:"icon_path" binding:"max=500"`
	IconBgColor    string  `json:"icon_bg_color" binding:"max=20"`
	DownloadURL    string  `json:"download_url" binding:"max=500"`
	SEOTitle       string  `json:"seo_title" binding:"max=255"`
	SEODescription string  `json:"seo_description" binding:"max=500"`
	SEOKeywords    string  `json:"seo_keywords" binding:"max=500"`
	AssociationInput
}

// UpdatePackageRequest 앱/게임 수정 요청 (nil 필드는 유지)
type UpdatePackageRequest struct {
	Title          *string `json:"title" binding:"omitempty,max=255"`
	Status         *Status `json:"status"`
	PackageName    *string `json:"package_name" binding:"omitempty,max=255"`
	Version        *string `json:"version" binding:"omitempty,max=50"`
	Size           *string `json:"size" binding:"omitempty,max=50"`
	Developer      *string `json:"developer" binding:"omitempty,max=255"`
	Description    *string `json:"description"`
	CategoryID     *uint64 `json:"category_id"`
	IconPath       *string `json:"icon_path" binding:"omitempty,max=500"`
	IconBgColor    *string `json:"icon_bg_color" binding:"omitempty,max=20"`
	DownloadURL    *string `json:"download_url" binding:"omitempty,max=500"`
	SEOTitle       *string `json:"seo_title" binding:"omitempty,max=255"`
	SEODescription *string `json:"seo_description" binding:"omitempty,max=500"`
	SEOKeywords    *string `json:"seo_keywords" binding:"omitempty,max=500"`
	AssociationInput
}

// CreateBlogRequest 블로그 생성 요청
type CreateBlogRequest struct {
	Title          string   `json:"title" binding:"max=255"`
	Status         Status   `json:"status"`
	Content        string   `json:"content"`
	Excerpt        string   `json:"excerpt"`
	CoverPath      string   `json:"cover_path" binding:"max=500"`
	CategoryID     *uint64  `json:"category_id"`
	SEOTitle       string   `json:"seo_title" binding:"max=255"`
	SEODescription string   `json:"seo_description" binding:"max=500"`
	SEOKeywords    string   `json:"seo_keywords" binding:"max=500"`
	Tags           []string `json:"tags" binding:"omitempty,max=50"`
	ScheduleInput
}

// UpdateBlogRequest 블로그 수정 요청 (nil 필드는 유지)
type UpdateBlogRequest struct {
	Title          *string  `json:"title" binding:"omitempty,max=255"`
	Status         *Status  `json:"status"`
	Content        *string  `json:"content"`
	Excerpt        *string  `json:"excerpt"`
	CoverPath      *string  `json:"cover_path" binding:"omitempty,max=500"`
	CategoryID     *uint64  `json:"category_id"`
	SEOTitle       *string  `json:"seo_title" binding:"omitempty,max=255"`
	SEODescription *string  `json:"seo_description" binding:"omitempty,max=500"`
	SEOKeywords    *string  `json:"seo_keywords" binding:"omitempty,max=500"`
	Tags           []string `json:"tags" binding:"omitempty,max=50"`
	ScheduleInput
}

// ChangeStatusRequest 상태 변경 요청
type ChangeStatusRequest struct {
	Status Status `json:"status"`
	ScheduleInput
}

// PackageResponse 앱/게임 응답 (미디어 경로는 URL로 변환)
type PackageResponse struct {
	ContentBase
	PackageDetails
	IconURL     string   `json:"icon_url"`
	ModFeatures []string `json:"mod_features"`
	Screenshots []string `json:"screenshots"`
	Tags        []string `json:"tags"`
}

// BlogResponse 블로그 응답
type BlogResponse struct {
	Blog
	CoverURL string   `json:"cover_url"`
	Tags     []string `json:"tags"`
}

// SearchHit 통합 검색 결과
type SearchHit struct {
	Type     ContentType `json:"type"`
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Slug     string      `json:"slug"`
	Summary  string      `json:"summary"`
	ImageURL string      `json:"image_url,omitempty"`
}
