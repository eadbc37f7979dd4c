package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
)

type ImportHandler struct {
	importService *service.ImportService
}

func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Import godoc
// POST /api/v1/import
//
// Accepts either a multipart upload under the "file" field or the raw CSV
// text as the request body.
func (h *ImportHandler) Import(c *gin.Context) {
	src, err := importSource(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrEmptyImport)
		return
	}
	defer src.Close()

	report, err := h.importService.Import(c.Request.Context(), src)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}

func importSource(c *gin.Context) (io.ReadCloser, error) {
	if file, err := c.FormFile("file"); err == nil {
		return file.Open()
	}
	if c.Request.Body == nil {
		return nil, http.ErrMissingFile
	}
	return c.Request.Body, nil
}
