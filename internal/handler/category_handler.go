package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/domain"
	"github.com/modvault/modvault-backend/internal/service"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List godoc
// @Summary 카테고리 목록
// @Tags categories
// @Produce json
// @Param type query string false "app | game | blog"
// @Success 200 {object} common.APIResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		common.HandleError(c, "Failed to list categories", err)
		return
	}

	common.SuccessResponse(c, categories, nil)
}

// Create handles POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req domain.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, "Failed to create category", err)
		return
	}

	common.CreatedResponse(c, category)
}
