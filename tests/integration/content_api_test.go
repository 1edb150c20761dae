package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/handler"
	"github.com/modvault/modvault-backend/internal/migration"
	"github.com/modvault/modvault-backend/internal/publication"
	"github.com/modvault/modvault-backend/internal/realtime"
	"github.com/modvault/modvault-backend/internal/repository"
	"github.com/modvault/modvault-backend/internal/routes"
	"github.com/modvault/modvault-backend/internal/service"
	"github.com/modvault/modvault-backend/internal/slug"
	"github.com/modvault/modvault-backend/pkg/storage"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ContentAPISuite drives the public and admin API over an in-memory SQLite database
type ContentAPISuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	hub    *realtime.Hub

	gameCategory uint64
	blogCategory uint64
}

func TestContentAPISuite(t *testing.T) {
	suite.Run(t, new(ContentAPISuite))
}

func (s *ContentAPISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	// Use SQLite for tests (no external DB dependency)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(migration.Run(db))
	s.db = db

	store := repository.NewPublicationStore(db)
	appRepo := repository.NewAppRepository(db)
	gameRepo := repository.NewGameRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	media := storage.NewResolver(map[string]string{
		service.BucketAppIcons:    "https://cdn.test/app-icons",
		service.BucketGameIcons:   "https://cdn.test/game-icons",
		service.BucketScreenshots: "https://cdn.test/screenshots",
		service.BucketBlogCovers:  "https://cdn.test/blog-covers",
	})

	hub := realtime.NewHub(nil)
	go hub.Run()
	s.hub = hub
	slugs := slug.NewResolver(store, 5)
	deps := &service.ContentDeps{
		DB:           db,
		Slugs:        slugs,
		Machine:      publication.NewMachine(time.UTC),
		Categories:   categoryRepo,
		Associations: repository.NewAssociationRepository(db),
		Versions:     repository.NewVersionRepository(db),
		Events:       hub,
		Media:        media,
	}

	blogService := service.NewBlogService(blogRepo, deps)
	sweeper := publication.NewSweeper(store, nil, time.Minute)
	sweeper.OnPromoted(blogService.Promoted)

	s.router = gin.New()
	routes.Setup(s.router, routes.Handlers{
		Apps:        handler.NewPackageHandler(service.NewAppService(appRepo, deps)),
		Games:       handler.NewPackageHandler(service.NewGameService(gameRepo, deps)),
		Blogs:       handler.NewBlogHandler(blogService),
		Categories:  handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, slugs)),
		Search:      handler.NewSearchHandler(service.NewSearchService(nil, appRepo, gameRepo, blogRepo, media)),
		Media:       handler.NewMediaHandler(service.NewMediaService(nil, media, service.BucketAppIcons)),
		Publication: handler.NewPublicationHandler(service.NewPublicationService(sweeper, store)),
		Realtime:    handler.NewWSHandler(hub, ""),
		Sitemap:     handler.NewSitemapHandler(service.NewSitemapService(store, nil), "https://modvault.test"),
	})

	s.gameCategory = s.categoryID("action")
	s.blogCategory = s.categoryID("guides")
}

func (s *ContentAPISuite) TearDownTest() {
	s.hub.Stop()
}

func (s *ContentAPISuite) categoryID(slugValue string) uint64 {
	var c domain.Category
	s.Require().NoError(s.db.Where("slug = ?", slugValue).First(&c).Error)
	return c.ID
}

func (s *ContentAPISuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.AdminUserHeader, "editor")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// data decodes the "data" envelope into dest
func (s *ContentAPISuite) data(w *httptest.ResponseRecorder, dest interface{}) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	s.Require().NoError(json.Unmarshal(env.Data, dest))
}

func (s *ContentAPISuite) createGame(title string) domain.PackageResponse {
	w := s.do(http.MethodPost, "/api/v1/admin/games", map[string]interface{}{
		"title":        title,
		"category_id":  s.gameCategory,
		"developer":    "Krafton",
		"icon_path":    "pubg/icon.png",
		"mod_features": []string{"Unlimited UC", "No Recoil"},
		"screenshots":  []string{"pubg/1.png"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var game domain.PackageResponse
	s.data(w, &game)
	return game
}

// --- Games ---

func (s *ContentAPISuite) TestGameLifecycle() {
	game := s.createGame("PUBG Mobile: New State!!")
	s.Equal("pubg-mobile-new-state", game.Slug)
	s.Equal(domain.StatusDraft, game.Status)
	s.Equal("https://cdn.test/game-icons/pubg/icon.png", game.IconURL)
	s.Len(game.ModFeatures, 2)

	// draft 는 공개 API 에서 보이지 않음
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/games/pubg-mobile-new-state", nil).Code)

	w := s.do(http.MethodPatch, "/api/v1/admin/games/"+game.ID+"/status", map[string]string{"status": "published"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/games/pubg-mobile-new-state", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var public domain.PackageResponse
	s.data(w, &public)
	s.Equal(game.ID, public.ID)
	s.Equal([]string{"https://cdn.test/screenshots/pubg/1.png"}, public.Screenshots)

	w = s.do(http.MethodGet, "/api/v1/games", nil)
	var list []domain.PackageResponse
	s.data(w, &list)
	s.Len(list, 1)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/admin/games/"+game.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/admin/games/"+game.ID, nil).Code)
}

func (s *ContentAPISuite) TestDuplicateTitleGetsDisambiguatedSlug() {
	first := s.createGame("Clash of Clans")
	second := s.createGame("Clash of Clans")

	s.Equal("clash-of-clans", first.Slug)
	s.Regexp(`^clash-of-clans-[0-9a-f]{8}$`, second.Slug)
}

func (s *ContentAPISuite) TestEditWithoutTitleChangeKeepsSlug() {
	game := s.createGame("Subway Surfers")

	w := s.do(http.MethodPut, "/api/v1/admin/games/"+game.ID, map[string]interface{}{
		"version":      "3.1.0",
		"mod_features": []string{},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated domain.PackageResponse
	s.data(w, &updated)

	s.Equal("subway-surfers", updated.Slug)
	s.Equal("3.1.0", updated.Version)
	s.Empty(updated.ModFeatures)
	s.Len(updated.Screenshots, 1)
}

func (s *ContentAPISuite) TestGameValidation() {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"category_id": s.gameCategory}},
		{"symbol title", map[string]interface{}{"title": "!!!", "category_id": s.gameCategory}},
		{"missing category", map[string]interface{}{"title": "Fine"}},
		{"blog category", map[string]interface{}{"title": "Fine", "category_id": s.blogCategory}},
		{"games never schedule", map[string]interface{}{"title": "Fine", "category_id": s.gameCategory, "status": "scheduled"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/admin/games", tt.body).Code)
		})
	}
}

// --- Blogs ---

func (s *ContentAPISuite) TestBlogVersionTrail() {
	w := s.do(http.MethodPost, "/api/v1/admin/blogs", map[string]interface{}{
		"title":       "Getting Started",
		"content":     "# Intro\n\nFirst draft of the guide.",
		"category_id": s.blogCategory,
		"tags":        []string{"guide"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var blog domain.BlogResponse
	s.data(w, &blog)
	s.Equal("getting-started", blog.Slug)
	s.NotEmpty(blog.Excerpt)

	w = s.do(http.MethodPut, "/api/v1/admin/blogs/"+blog.ID, map[string]string{"content": "Second draft."})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// status only: no new version
	s.Require().Equal(http.StatusOK, s.do(http.MethodPatch, "/api/v1/admin/blogs/"+blog.ID+"/status", map[string]string{"status": "published"}).Code)

	w = s.do(http.MethodGet, "/api/v1/admin/blogs/"+blog.ID+"/versions", nil)
	var versions []domain.ContentVersion
	s.data(w, &versions)
	s.Require().Len(versions, 2)
	s.Equal(uint(2), versions[0].VersionNumber)
	s.Equal("editor", versions[0].CreatedBy)

	w = s.do(http.MethodPost, "/api/v1/admin/blogs/"+blog.ID+"/versions/1/restore", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var restored domain.BlogResponse
	s.data(w, &restored)
	s.Contains(restored.Content, "First draft")

	// restore does not persist
	w = s.do(http.MethodGet, "/api/v1/blogs/getting-started", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var public domain.BlogResponse
	s.data(w, &public)
	s.Equal("Second draft.", public.Content)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/admin/blogs/"+blog.ID+"/versions/9", nil).Code)
}

func (s *ContentAPISuite) TestScheduledBlogIsPromotedBySweep() {
	past := s.do(http.MethodPost, "/api/v1/admin/blogs", map[string]interface{}{
		"title":        "Too Late",
		"status":       "scheduled",
		"scheduled_at": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	s.Equal(http.StatusBadRequest, past.Code)

	w := s.do(http.MethodPost, "/api/v1/admin/blogs", map[string]interface{}{
		"title":          "Patch Notes",
		"status":         "scheduled",
		"scheduled_date": time.Now().Add(48 * time.Hour).In(time.UTC).Format("2006-01-02"),
		"scheduled_time": "09:00",
		"time_zone":      "Asia/Seoul",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var blog domain.BlogResponse
	s.data(w, &blog)
	s.Equal(domain.StatusScheduled, blog.Status)
	s.Require().NotNil(blog.ScheduledAt)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/blogs/patch-notes", nil).Code)

	// 예약 시각이 지난 것처럼 되돌림
	s.Require().NoError(s.db.Model(&domain.Blog{}).Where("id = ?", blog.ID).
		Update("scheduled_at", time.Now().Add(-time.Minute).UTC()).Error)

	w = s.do(http.MethodPost, "/api/v1/admin/publication/sweep", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Total int `json:"total"`
	}
	s.data(w, &result)
	s.Equal(1, result.Total)

	w = s.do(http.MethodGet, "/api/v1/blogs/patch-notes", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var public domain.BlogResponse
	s.data(w, &public)
	s.Equal(domain.StatusPublished, public.Status)
	s.Nil(public.ScheduledAt)
}

// --- Cross-cutting ---

func (s *ContentAPISuite) TestSearchSitemapAndCategories() {
	game := s.createGame("Minecraft Pocket Edition")
	s.Require().Equal(http.StatusOK, s.do(http.MethodPatch, "/api/v1/admin/games/"+game.ID+"/status", map[string]string{"status": "published"}).Code)
	s.createGame("Minecraft Dungeons") // draft

	w := s.do(http.MethodGet, "/api/v1/search?q=minecraft", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var hits []domain.SearchHit
	s.data(w, &hits)
	s.Require().Len(hits, 1)
	s.Equal(game.ID, hits[0].ID)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/search", nil).Code)

	w = s.do(http.MethodGet, "/sitemap.xml", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "application/xml")
	s.Contains(w.Body.String(), "https://modvault.test/games/minecraft-pocket-edition")
	s.NotContains(w.Body.String(), "minecraft-dungeons")

	w = s.do(http.MethodGet, "/api/v1/categories?type=game", nil)
	var categories []domain.Category
	s.data(w, &categories)
	s.NotEmpty(categories)
	for _, c := range categories {
		s.Equal(domain.ContentTypeGame, c.ContentType)
	}
}

func (s *ContentAPISuite) TestRealtimeRejectsUnknownTable() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/realtime/members/1", nil).Code)
}

func (s *ContentAPISuite) TestMediaUploadRequiresFile() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", bytes.NewBufferString("--x--\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}
