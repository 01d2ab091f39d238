package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/pkg/response"
)

type subjectService interface {
	SubjectsFor(ctx context.Context, user *models.CurrentUser) ([]models.SubjectDetail, error)
	SubjectStudents(ctx context.Context, user *models.CurrentUser, subjectID string) (*models.Subject, []models.SubjectStudent, error)
}

// SubjectHandler serves the subject pages of students and instructors.
type SubjectHandler struct {
	service subjectService
}

// NewSubjectHandler constructs the handler.
func NewSubjectHandler(service subjectService) *SubjectHandler {
	return &SubjectHandler{service: service}
}

// List godoc
// @Summary Subjects taught or enrolled in
// @Tags Courses
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /courses/subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.SubjectsFor(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "subject_list.html", "Subjects", gin.H{"Subjects": subjects, "Total": len(subjects)})
}

// Students godoc
// @Summary Students enrolled in a subject
// @Description Only the assigned instructor may view; missing grade rows are created
// @Tags Courses
// @Produce html
// @Param id path string true "Subject ID"
// @Success 200 {string} string "HTML page"
// @Router /courses/subject/{id}/students [get]
func (h *SubjectHandler) Students(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	subject, students, err := h.service.SubjectStudents(c.Request.Context(), currentUser(c), id)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "subject_students.html", subject.Code, gin.H{
		"Subject":  subject,
		"Students": students,
		"Total":    len(students),
	})
}
