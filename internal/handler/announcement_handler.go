package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/response"
)

const (
	createAnnouncementPath = "/announcements/create"
	myAnnouncementsPath    = "/announcements/mine"
)

type announcementService interface {
	SubjectOptions(ctx context.Context, user *models.CurrentUser) ([]models.SubjectDetail, error)
	Create(ctx context.Context, user *models.CurrentUser, req models.AnnouncementRequest) (*models.Announcement, error)
	Get(ctx context.Context, user *models.CurrentUser, id string) (*models.Announcement, error)
	Update(ctx context.Context, user *models.CurrentUser, id string, req models.AnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, user *models.CurrentUser, id string) error
	ListMine(ctx context.Context, user *models.CurrentUser, limit int) ([]models.AnnouncementDetail, error)
	ListForStudent(ctx context.Context, studentID string, limit int) ([]models.AnnouncementDetail, error)
}

// AnnouncementHandler serves announcement authoring and the student feed.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// CreatePage godoc
// @Summary Announcement form
// @Tags Announcements
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /announcements/create [get]
func (h *AnnouncementHandler) CreatePage(c *gin.Context) {
	subjects, err := h.service.SubjectOptions(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "announcement_form.html", "New announcement", gin.H{
		"Heading":  "New announcement",
		"Action":          createAnnouncementPath,
		"Subjects":        subjects,
		"SelectedSubject": "",
		"Active":          true,
	})
}

// Create godoc
// @Summary Create announcement
// @Description System announcements carry no subject; course announcements require one
// @Tags Announcements
// @Accept x-www-form-urlencoded
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param announcement_type formData string true "system or course"
// @Param subject formData string false "Subject ID"
// @Param is_active formData string false "on when active"
// @Success 302 {string} string "Redirect to the dashboard"
// @Router /announcements/create [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req models.AnnouncementRequest
	if !bindForm(c, &req, createAnnouncementPath) {
		return
	}
	if _, err := h.service.Create(c.Request.Context(), currentUser(c), req); err != nil {
		response.Fail(c, err, createAnnouncementPath)
		return
	}
	response.Success(c, middleware.DashboardPath, "Announcement created successfully!")
}

// Mine godoc
// @Summary Announcements authored by the current user
// @Tags Announcements
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /announcements/mine [get]
func (h *AnnouncementHandler) Mine(c *gin.Context) {
	announcements, err := h.service.ListMine(c.Request.Context(), currentUser(c), 0)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "my_announcements.html", "My announcements", gin.H{"Announcements": announcements})
}

// EditPage godoc
// @Summary Announcement edit form
// @Tags Announcements
// @Produce html
// @Param id path string true "Announcement ID"
// @Success 200 {string} string "HTML page"
// @Router /announcements/edit/{id} [get]
func (h *AnnouncementHandler) EditPage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)
	announcement, err := h.service.Get(ctx, user, id)
	if err != nil {
		response.Fail(c, err, myAnnouncementsPath)
		return
	}
	subjects, err := h.service.SubjectOptions(ctx, user)
	if err != nil {
		response.Fail(c, err, myAnnouncementsPath)
		return
	}
	selected := ""
	if announcement.SubjectID != nil {
		selected = *announcement.SubjectID
	}
	render(c, "announcement_form.html", "Edit announcement", gin.H{
		"Heading":         "Edit announcement",
		"Action":          "/announcements/edit/" + id,
		"Announcement":    announcement,
		"Subjects":        subjects,
		"SelectedSubject": selected,
		"Active":          announcement.IsActive,
	})
}

// Update godoc
// @Summary Update announcement
// @Description Switching to system clears the subject
// @Tags Announcements
// @Accept x-www-form-urlencoded
// @Param id path string true "Announcement ID"
// @Success 302 {string} string "Redirect to my announcements"
// @Router /announcements/edit/{id} [post]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	editPath := "/announcements/edit/" + id
	var req models.AnnouncementRequest
	if !bindForm(c, &req, editPath) {
		return
	}
	if _, err := h.service.Update(c.Request.Context(), currentUser(c), id, req); err != nil {
		target := editPath
		if errors.Is(err, appErrors.ErrForbidden) {
			target = myAnnouncementsPath
		}
		response.Fail(c, err, target)
		return
	}
	response.Success(c, myAnnouncementsPath, "Announcement updated successfully!")
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Success 302 {string} string "Redirect to my announcements"
// @Router /announcements/delete/{id} [post]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.Fail(c, err, myAnnouncementsPath)
		return
	}
	response.Success(c, myAnnouncementsPath, "Announcement deleted successfully!")
}

// StudentFeed godoc
// @Summary Announcements visible to the current student
// @Tags Announcements
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /accounts/announcements [get]
func (h *AnnouncementHandler) StudentFeed(c *gin.Context) {
	announcements, err := h.service.ListForStudent(c.Request.Context(), currentUser(c).ID, 0)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "all_announcements.html", "Announcements", gin.H{"Announcements": announcements})
}
