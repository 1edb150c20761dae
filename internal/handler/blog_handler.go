package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/service"
	"github.com/modvault/modvault-backend/pkg/ginutil"
)

// AdminUserHeader carries the editor name recorded on blog versions
const AdminUserHeader = "X-Admin-User"

// BlogHandler handles blog endpoints
type BlogHandler struct {
	service service.BlogService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(service service.BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

func author(c *gin.Context) string {
	if name := c.GetHeader(AdminUserHeader); name != "" {
		return name
	}
	return "admin"
}

// ListLive godoc
// @Summary 공개 블로그 목록
// @Tags blogs
// @Produce json
// @Param page query int false "페이지 번호" default(1)
// @Param limit query int false "페이지당 항목 수" default(20)
// @Param category_id query int false "카테고리 ID"
// @Success 200 {object} common.APIResponse
// @Router /blogs [get]
func (h *BlogHandler) ListLive(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	blogs, meta, err := h.service.ListLive(c.Request.Context(), page, limit, ginutil.QueryUint64Ptr(c, "category_id"))
	if err != nil {
		common.HandleError(c, "Failed to list blogs", err)
		return
	}

	common.SuccessResponse(c, blogs, meta)
}

// GetBySlug godoc
// @Summary 공개 블로그 상세
// @Tags blogs
// @Produce json
// @Param slug path string true "슬러그"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /blogs/{slug} [get]
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	blog, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.HandleError(c, "Blog not found", err)
		return
	}

	common.SuccessResponse(c, blog, nil)
}

// List handles GET /admin/blogs
func (h *BlogHandler) List(c *gin.Context) {
	q := service.BlogQuery{
		Status:     domain.Status(c.Query("status")),
		CategoryID: ginutil.QueryUint64Ptr(c, "category_id"),
		Query:      c.Query("q"),
		Page:       ginutil.QueryInt(c, "page", 1),
		Limit:      ginutil.QueryInt(c, "limit", 20),
	}

	blogs, meta, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		common.HandleError(c, "Failed to list blogs", err)
		return
	}

	common.SuccessResponse(c, blogs, meta)
}

// Get handles GET /admin/blogs/:id
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.HandleError(c, "Blog not found", err)
		return
	}

	common.SuccessResponse(c, blog, nil)
}

// Create godoc
// @Summary 블로그 생성 (버전 1 기록)
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Admin-User header string false "작성자"
// @Param request body domain.CreateBlogRequest true "생성 요청"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /admin/blogs [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req domain.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	blog, err := h.service.Create(c.Request.Context(), &req, author(c))
	if err != nil {
		common.HandleError(c, "Failed to create blog", err)
		return
	}

	common.CreatedResponse(c, blog)
}

// Update godoc
// @Summary 블로그 수정 (본문이 바뀌면 새 버전)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "블로그 ID"
// @Param X-Admin-User header string false "작성자"
// @Param request body domain.UpdateBlogRequest true "수정 요청"
// @Success 200 {object} common.APIResponse
// @Router /admin/blogs/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	var req domain.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	blog, err := h.service.Update(c.Request.Context(), c.Param("id"), &req, author(c))
	if err != nil {
		common.HandleError(c, "Failed to update blog", err)
		return
	}

	common.SuccessResponse(c, blog, nil)
}

// ChangeStatus handles PATCH /admin/blogs/:id/status
func (h *BlogHandler) ChangeStatus(c *gin.Context) {
	var req domain.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	blog, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		common.HandleError(c, "Failed to change status", err)
		return
	}

	common.SuccessResponse(c, blog, nil)
}

// Delete handles DELETE /admin/blogs/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.HandleError(c, "Failed to delete blog", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListVersions godoc
// @Summary 블로그 버전 목록 (최신순)
// @Tags admin
// @Produce json
// @Param id path string true "블로그 ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/blogs/{id}/versions [get]
func (h *BlogHandler) ListVersions(c *gin.Context) {
	versions, err := h.service.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.HandleError(c, "Failed to list versions", err)
		return
	}

	common.SuccessResponse(c, versions, nil)
}

// GetVersion handles GET /admin/blogs/:id/versions/:version
func (h *BlogHandler) GetVersion(c *gin.Context) {
	number, err := ginutil.ParamUint(c, "version")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid version number", err)
		return
	}

	version, err := h.service.GetVersion(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		common.HandleError(c, "Version not found", err)
		return
	}

	common.SuccessResponse(c, version, nil)
}

// RestoreVersion godoc
// @Summary 버전 스냅샷을 편집 화면에 불러오기 (저장은 별도 PUT)
// @Tags admin
// @Produce json
// @Param id path string true "블로그 ID"
// @Param version path int true "버전 번호"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /admin/blogs/{id}/versions/{version}/restore [post]
func (h *BlogHandler) RestoreVersion(c *gin.Context) {
	number, err := ginutil.ParamUint(c, "version")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid version number", err)
		return
	}

	blog, err := h.service.RestoreVersion(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		common.HandleError(c, "Failed to restore version", err)
		return
	}

	common.SuccessResponse(c, blog, nil)
}
