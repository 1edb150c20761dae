package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/handler"
)

// Handlers everything Setup mounts
type Handlers struct {
	Apps        *handler.PackageHandler
	Games       *handler.PackageHandler
	Blogs       *handler.BlogHandler
	Categories  *handler.CategoryHandler
	Search      *handler.SearchHandler
	Media       *handler.MediaHandler
	Publication *handler.PublicationHandler
	Realtime    *handler.WSHandler
	Sitemap     *handler.SitemapHandler
}

// Setup configures all API routes
func Setup(router *gin.Engine, h Handlers) {
	router.GET("/sitemap.xml", h.Sitemap.Sitemap)

	api := router.Group("/api/v1")

	// 공개 API (published 만 노출)
	mountPackagePublic(api.Group("/apps"), h.Apps)
	mountPackagePublic(api.Group("/games"), h.Games)

	blogs := api.Group("/blogs")
	blogs.GET("", h.Blogs.ListLive)
	blogs.GET("/:slug", h.Blogs.GetBySlug)

	api.GET("/search", h.Search.Search)
	api.GET("/categories", h.Categories.List)
	api.GET("/realtime/:table/:id", h.Realtime.Subscribe)

	// 관리자 API
	admin := api.Group("/admin")
	mountPackageAdmin(admin.Group("/apps"), h.Apps)
	mountPackageAdmin(admin.Group("/games"), h.Games)

	adminBlogs := admin.Group("/blogs")
	adminBlogs.GET("", h.Blogs.List)
	adminBlogs.POST("", h.Blogs.Create)
	adminBlogs.GET("/:id", h.Blogs.Get)
	adminBlogs.PUT("/:id", h.Blogs.Update)
	adminBlogs.DELETE("/:id", h.Blogs.Delete)
	adminBlogs.PATCH("/:id/status", h.Blogs.ChangeStatus)
	adminBlogs.GET("/:id/versions", h.Blogs.ListVersions)                    // 버전 목록 (최신순)
	adminBlogs.GET("/:id/versions/:version", h.Blogs.GetVersion)             // 버전 상세
	adminBlogs.POST("/:id/versions/:version/restore", h.Blogs.RestoreVersion) // 편집 화면으로 불러오기

	admin.POST("/categories", h.Categories.Create)
	admin.POST("/media", h.Media.Upload)

	publication := admin.Group("/publication")
	publication.POST("/sweep", h.Publication.Sweep) // 예약 게시 즉시 실행
	publication.GET("/audit", h.Publication.Audit)
}

func mountPackagePublic(g *gin.RouterGroup, h *handler.PackageHandler) {
	g.GET("", h.ListLive)
	g.GET("/:slug", h.GetBySlug)
}

func mountPackageAdmin(g *gin.RouterGroup, h *handler.PackageHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/status", h.ChangeStatus)
}
