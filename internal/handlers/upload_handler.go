package handlers

import (
	"errors"
	"net/http"

	"pest_crm/internal/services"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload handles POST /api/upload (multipart field "file").
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no file was uploaded")
		return
	}

	stored, err := h.uploadService.Store(file)
	switch {
	case errors.Is(err, services.ErrUnsupportedMedia),
		errors.Is(err, services.ErrFileTooLarge):
		respondError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		respondInternal(c, err)
	default:
		respondData(c, http.StatusOK, stored)
	}
}

func (h *UploadHandler) Delete(c *gin.Context) {
	err := h.uploadService.Delete(c.Param("filename"))
	if errors.Is(err, services.ErrFileNotFound) {
		respondError(c, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondMessage(c, "File deleted")
}

func (h *UploadHandler) List(c *gin.Context) {
	files, err := h.uploadService.List()
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, files)
}
