package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/pkg/response"
)

type gradeService interface {
	Edit(ctx context.Context, user *models.CurrentUser, gradeID string) (*models.GradeDetail, error)
	Update(ctx context.Context, user *models.CurrentUser, gradeID string, req models.UpdateGradeRequest) (*models.GradeDetail, error)
	Summary(ctx context.Context, studentID string) (*models.GradeSummary, error)
}

// GradeHandler serves grade editing and the student grade list.
type GradeHandler struct {
	service gradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service gradeService) *GradeHandler {
	return &GradeHandler{service: service}
}

// Edit godoc
// @Summary Grade edit form
// @Tags Grades
// @Produce html
// @Param id path string true "Grade ID"
// @Success 200 {string} string "HTML page"
// @Router /grades/edit/{id} [get]
func (h *GradeHandler) Edit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	grade, err := h.service.Edit(c.Request.Context(), currentUser(c), id)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "edit_grade.html", "Edit grade", gin.H{"Grade": grade})
}

// Update godoc
// @Summary Save grade components
// @Description Recomputes the weighted average, letter grade and grade point
// @Tags Grades
// @Accept x-www-form-urlencoded
// @Param id path string true "Grade ID"
// @Param prelim_grade formData string false "Prelim score 0-100"
// @Param midterm_grade formData string false "Midterm score 0-100"
// @Param final_grade formData string false "Final score 0-100"
// @Param prelim_weight formData string false "Prelim weight"
// @Param midterm_weight formData string false "Midterm weight"
// @Param final_weight formData string false "Final weight"
// @Param remarks formData string false "Remarks"
// @Success 302 {string} string "Redirect to the subject students page"
// @Router /grades/edit/{id} [post]
func (h *GradeHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	editPath := "/grades/edit/" + id

	var req models.UpdateGradeRequest
	if !bindForm(c, &req, editPath) {
		return
	}
	grade, err := h.service.Update(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		response.Fail(c, err, editPath)
		return
	}
	response.Success(c, "/courses/subject/"+grade.SubjectID+"/students", "Grades updated successfully for "+grade.StudentName+"!")
}

// All godoc
// @Summary All grades of the current student
// @Tags Grades
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /accounts/grades [get]
func (h *GradeHandler) All(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		response.Fail(c, err, middleware.DashboardPath)
		return
	}
	render(c, "all_grades.html", "My grades", gin.H{"Summary": summary})
}
