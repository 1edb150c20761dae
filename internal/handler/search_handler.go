package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/service"
	"github.com/modvault/modvault-backend/pkg/ginutil"
)

// SearchHandler handles unified search over published content
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search godoc
// @Summary 통합 검색 (앱, 게임, 블로그)
// @Tags search
// @Produce json
// @Param q query string true "검색어"
// @Param page query int false "페이지 번호" default(1)
// @Param limit query int false "페이지당 항목 수" default(20)
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	hits, meta, err := h.searchService.Search(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		common.HandleError(c, "Search failed", err)
		return
	}

	common.SuccessResponse(c, hits, meta)
}
