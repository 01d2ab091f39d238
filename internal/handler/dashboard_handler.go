package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/pkg/response"
)

type dashboardService interface {
	Student(ctx context.Context, user *models.CurrentUser) (*models.StudentDashboard, bool, error)
	Instructor(ctx context.Context, user *models.CurrentUser) (*models.InstructorDashboard, bool, error)
}

// DashboardHandler renders the role landing pages.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Index godoc
// @Summary Role based dashboard redirect
// @Tags Dashboard
// @Success 302 {string} string "Redirect to the role dashboard"
// @Router /dashboard [get]
func (h *DashboardHandler) Index(c *gin.Context) {
	user := currentUser(c)
	switch {
	case user.IsStudent():
		response.Redirect(c, "/dashboard/student")
	case user.IsInstructor():
		response.Redirect(c, "/dashboard/instructor")
	case user.IsAdmin():
		response.Redirect(c, "/admin")
	default:
		response.Redirect(c, loginPath)
	}
}

// Student godoc
// @Summary Student dashboard
// @Tags Dashboard
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	dashboard, cacheHit, err := h.service.Student(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	render(c, "student_dashboard.html", "Dashboard", gin.H{"Dashboard": dashboard})
}

// Instructor godoc
// @Summary Instructor dashboard
// @Tags Dashboard
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /dashboard/instructor [get]
func (h *DashboardHandler) Instructor(c *gin.Context) {
	dashboard, cacheHit, err := h.service.Instructor(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	render(c, "instructor_dashboard.html", "Dashboard", gin.H{"Dashboard": dashboard})
}
