package domain

// PackageDetails APK metadata shared by apps and games
type PackageDetails struct {
	PackageName    string  `gorm:"column:package_name;size:255" json:"package_name"`
	Version        string  `gorm:"column:version;size:50" json:"version"`
	Size           string  `gorm:"column:size;size:50" json:"size"`
	Developer      string  `gorm:"column:developer;size:255" json:"developer"`
	Description    string  `gorm:"column:description;type:text" json:"description"`
	CategoryID     *uint64 `gorm:"column:category_id;index" json:"category_id,omitempty"`
	IconPath       string  `gorm:"column:icon_path;size:500" json:"icon_path"`
	IconBgColor    string  `gorm:"column:icon_bg_color;size:20" json:"icon_bg_color"`
	DownloadURL    string  `gorm:"column:download_url;size:500" json:"download_url"`
	SEOTitle       string  `gorm:"column:seo_title;size:255" json:"seo_title"`
	SEODescription string  `gorm:"column:seo_description;size:500" json:"seo_description"`
	SEOKeywords    string  `gorm:"column:seo_keywords;size:500" json:"seo_keywords"`
}

// Details returns the APK metadata
func (d *PackageDetails) Details() *PackageDetails {
	return d
}

// App 모드 앱
type App struct {
	ContentBase
	PackageDetails
}

func (App) TableName() string {
	return "apps"
}

func (App) Type() ContentType {
	return ContentTypeApp
}

// Game 모드 게임
type Game struct {
	ContentBase
	PackageDetails
}

func (Game) TableName() string {
	return "games"
}

func (Game) Type() ContentType {
	return ContentTypeGame
}
