package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/service"
)

type UploadHandler struct {
	svc *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload godoc
// @Summary Upload a media file
// @Description Forwards the multipart file buffer to blob storage and
// @Description returns the storage key and a presigned URL.
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 200 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	resp, err := h.svc.Upload(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if err == service.ErrInvalidInput {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ServeURL godoc
// @Summary Resolve a storage key to a presigned URL
// @Tags uploads
// @Produce json
// @Param key query string true "Storage key"
// @Success 200 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /api/v1/uploads/url [get]
func (h *UploadHandler) ServeURL(c *gin.Context) {
	url, err := h.svc.ServeURL(c.Request.Context(), c.Query("key"))
	if err != nil {
		if err == service.ErrInvalidInput {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
