package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/service"
	"github.com/noah-isme/school-records/pkg/response"
)

const gradesPath = "/accounts/grades"

type exportService interface {
	Transcript(ctx context.Context, user *models.CurrentUser, format string) (*service.ExportResult, error)
	Resolve(user *models.CurrentUser, token string) (*service.Download, error)
}

// ExportHandler serves transcript exports and signed downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Transcript godoc
// @Summary Export transcript
// @Description Renders the grade list as CSV or PDF and redirects to a signed download link
// @Tags Grades
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 302 {string} string "Redirect to the download"
// @Router /accounts/grades/export [get]
func (h *ExportHandler) Transcript(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	result, err := h.service.Transcript(c.Request.Context(), currentUser(c), format)
	if err != nil {
		response.Fail(c, err, gradesPath)
		return
	}
	response.Redirect(c, result.URL)
}

// Download godoc
// @Summary Download export
// @Tags Grades
// @Param token path string true "Signed token"
// @Success 200 {file} file "Export file"
// @Router /downloads/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.Resolve(currentUser(c), c.Param("token"))
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	c.Header("Content-Type", download.ContentType)
	c.Header("Cache-Control", "no-store")
	c.FileAttachment(download.Path, download.Filename)
}
