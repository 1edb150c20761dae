package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/service"
)

// PublicationHandler manual triggers for the scheduled-publish sweep and audit
type PublicationHandler struct {
	publicationService *service.PublicationService
}

// NewPublicationHandler creates a new PublicationHandler
func NewPublicationHandler(publicationService *service.PublicationService) *PublicationHandler {
	return &PublicationHandler{publicationService: publicationService}
}

// Sweep godoc
// @Summary 예약 게시 즉시 실행
// @Tags admin
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /admin/publication/sweep [post]
func (h *PublicationHandler) Sweep(c *gin.Context) {
	result, err := h.publicationService.Sweep(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Sweep failed", err)
		return
	}

	common.SuccessResponse(c, gin.H{"promoted": result, "total": result.Total()}, nil)
}

// Audit handles GET /admin/publication/audit
func (h *PublicationHandler) Audit(c *gin.Context) {
	found, err := h.publicationService.Audit(c.Request.Context())
	if err != nil {
		common.HandleError(c, "Audit failed", err)
		return
	}

	common.SuccessResponse(c, found, nil)
}
