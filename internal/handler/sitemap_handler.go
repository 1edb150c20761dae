package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/service"
)

// SitemapHandler serves sitemap.xml for published content
type SitemapHandler struct {
	sitemapService *service.SitemapService
	baseURL        string
}

// NewSitemapHandler creates a new SitemapHandler
func NewSitemapHandler(sitemapService *service.SitemapService, baseURL string) *SitemapHandler {
	return &SitemapHandler{sitemapService: sitemapService, baseURL: baseURL}
}

// Sitemap handles GET /sitemap.xml
func (h *SitemapHandler) Sitemap(c *gin.Context) {
	body, err := h.sitemapService.XML(c.Request.Context(), h.baseURL)
	if err != nil {
		common.HandleError(c, "Failed to build sitemap", err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
