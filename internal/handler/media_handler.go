package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/modvault/modvault-backend/internal/common"
	"github.com/modvault/modvault-backend/internal/service"
)

// MediaHandler handles media uploads to the configured buckets
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Upload godoc
// @Summary 미디어 업로드 (아이콘, 스크린샷, 커버, APK)
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "업로드 파일"
// @Param bucket formData string false "버킷 (app-icons, game-icons, screenshots, blog-covers)"
// @Param folder formData string false "버킷 내 폴더"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Router /admin/media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "File is required", nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to read file", err)
		return
	}
	defer f.Close()

	result, err := h.mediaService.Upload(
		c.Request.Context(),
		file.Filename,
		file.Header.Get("Content-Type"),
		file.Size,
		f,
		c.PostForm("bucket"),
		c.PostForm("folder"),
	)
	if err != nil {
		common.HandleError(c, "Upload failed", err)
		return
	}

	common.CreatedResponse(c, result)
}
