package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/service"
	"github.com/modvault/modvault-backend/pkg/ginutil"
)

// PackageHandler handles app and game endpoints; one instance per content type
type PackageHandler struct {
	service service.PackageService
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(service service.PackageService) *PackageHandler {
	return &PackageHandler{service: service}
}

// ListLive godoc
// @Summary 공개 목록 조회
// @Tags apps,games
// @Produce json
// @Param page query int false "페이지 번호" default(1)
// @Param limit query int false "페이지당 항목 수" default(20)
// @Param category_id query int false "카테고리 ID"
// @Success 200 {object} common.APIResponse
// @Router /apps [get]
// @Router /games [get]
func (h *PackageHandler) ListLive(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	items, meta, err := h.service.ListLive(c.Request.Context(), page, limit, ginutil.QueryUint64Ptr(c, "category_id"))
	if err != nil {
		common.HandleError(c, "Failed to list "+h.service.Type().Table(), err)
		return
	}

	common.SuccessResponse(c, items, meta)
}

// GetBySlug godoc
// @Summary 공개 상세 조회 (published 만)
// @Tags apps,games
// @Produce json
// @Param slug path string true "슬러그"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /apps/{slug} [get]
// @Router /games/{slug} [get]
func (h *PackageHandler) GetBySlug(c *gin.Context) {
	item, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.HandleError(c, "Not found", err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// List godoc
// @Summary 관리자 목록 조회
// @Tags admin
// @Produce json
// @Param status query string false "draft | published"
// @Param q query string false "제목 검색"
// @Param page query int false "페이지 번호" default(1)
// @Param limit query int false "페이지당 항목 수" default(20)
// @Success 200 {object} common.APIResponse
// @Router /admin/apps [get]
// @Router /admin/games [get]
func (h *PackageHandler) List(c *gin.Context) {
	q := service.PackageQuery{
		Status:     domain.Status(c.Query("status")),
		CategoryID: ginutil.QueryUint64Ptr(c, "category_id"),
		Query:      c.Query("q"),
		Page:       ginutil.QueryInt(c, "page", 1),
		Limit:      ginutil.QueryInt(c, "limit", 20),
	}

	items, meta, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		common.HandleError(c, "Failed to list "+h.service.Type().Table(), err)
		return
	}

	common.SuccessResponse(c, items, meta)
}

// Get handles GET /admin/{apps|games}/:id
func (h *PackageHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.HandleError(c, "Not found", err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// Create godoc
// @Summary 앱/게임 생성
// @Tags admin
// @Accept json
// @Produce json
// @Param request body domain.CreatePackageRequest true "생성 요청"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /admin/apps [post]
// @Router /admin/games [post]
func (h *PackageHandler) Create(c *gin.Context) {
	var req domain.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, "Failed to create", err)
		return
	}

	common.CreatedResponse(c, item)
}

// Update godoc
// @Summary 앱/게임 수정 (제목이 바뀌면 슬러그 재생성)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ID"
// @Param request body domain.UpdatePackageRequest true "수정 요청"
// @Success 200 {object} common.APIResponse
// @Router /admin/apps/{id} [put]
// @Router /admin/games/{id} [put]
func (h *PackageHandler) Update(c *gin.Context) {
	var req domain.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		common.HandleError(c, "Failed to update", err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// ChangeStatus handles PATCH /admin/{apps|games}/:id/status
func (h *PackageHandler) ChangeStatus(c *gin.Context) {
	var req domain.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.service.ChangeStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		common.HandleError(c, "Failed to change status", err)
		return
	}

	common.SuccessResponse(c, item, nil)
}

// Delete handles DELETE /admin/{apps|games}/:id
func (h *PackageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.HandleError(c, "Failed to delete", err)
		return
	}

	c.Status(http.StatusNoContent)
}
