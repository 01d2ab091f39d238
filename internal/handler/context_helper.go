package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/response"
)

func currentUser(c *gin.Context) *models.CurrentUser {
	return middleware.CurrentUser(c)
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// render adds the current user and page title to data before rendering.
func render(c *gin.Context, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	data["Title"] = title
	response.HTML(c, http.StatusOK, name, data)
}

// idParam returns the named path parameter when it is a well formed UUID and
// renders the not-found page otherwise.
func idParam(c *gin.Context, name string) (string, bool) {
	raw := strings.TrimSpace(c.Param(name))
	if _, err := uuid.Parse(raw); err != nil {
		response.NotFound(c, "")
		return "", false
	}
	return strings.ToLower(raw), true
}

// bindForm decodes the posted form into dst. Malformed bodies are reported
// as validation failures.
func bindForm(c *gin.Context, dst interface{}, fallback string) bool {
	if err := c.ShouldBind(dst); err != nil {
		response.Fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form submission"), fallback)
		return false
	}
	return true
}

// safeRedirect accepts only same-site absolute paths.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
