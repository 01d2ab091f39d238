package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/pkg/response"
)

const adminPath = "/admin"

type catalogService interface {
	AdminOverview(ctx context.Context) (*models.AdminOverview, error)
	CreateCourse(ctx context.Context, actor *models.CurrentUser, req models.CreateCourseRequest) (*models.Course, error)
	CreateSubject(ctx context.Context, actor *models.CurrentUser, req models.CreateSubjectRequest) (*models.Subject, error)
	AssignInstructor(ctx context.Context, actor *models.CurrentUser, subjectID string, req models.AssignInstructorRequest) error
}

type enrollmentService interface {
	Enroll(ctx context.Context, actor *models.CurrentUser, req models.CreateEnrollmentRequest) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, actor *models.CurrentUser, id string, req models.UpdateEnrollmentStatusRequest) error
}

type gpaService interface {
	ComputeRecord(ctx context.Context, actor *models.CurrentUser, req models.ComputeGPARequest) (*models.GPARecord, error)
}

var (
	semesterOptions = []models.Semester{models.SemesterFirst, models.SemesterSecond, models.SemesterSummer}
	statusOptions   = []models.EnrollmentStatus{models.EnrollmentEnrolled, models.EnrollmentDropped, models.EnrollmentCompleted}
)

// AdminHandler serves catalog maintenance for administrators.
type AdminHandler struct {
	catalog     catalogService
	enrollments enrollmentService
	gpa         gpaService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(catalog catalogService, enrollments enrollmentService, gpa gpaService) *AdminHandler {
	return &AdminHandler{catalog: catalog, enrollments: enrollments, gpa: gpa}
}

// Overview godoc
// @Summary Catalog overview
// @Tags Admin
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /admin [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.catalog.AdminOverview(c.Request.Context())
	if err != nil {
		response.Internal(c, err)
		return
	}
	render(c, "admin.html", "Administration", gin.H{
		"Overview":  overview,
		"Semesters": semesterOptions,
		"Statuses":  statusOptions,
	})
}

// CreateCourse godoc
// @Summary Create course
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Param code formData string true "Course code"
// @Param name formData string true "Course name"
// @Success 302 {string} string "Redirect to admin"
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(c *gin.Context) {
	var req models.CreateCourseRequest
	if !bindForm(c, &req, adminPath) {
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Fail(c, err, adminPath)
		return
	}
	response.Success(c, adminPath, "Course "+course.Code+" created.")
}

// CreateSubject godoc
// @Summary Create subject
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Param code formData string true "Subject code"
// @Param course_id formData string true "Course ID"
// @Param units formData int true "Units 1-6"
// @Param semester formData string true "1, 2 or summer"
// @Success 302 {string} string "Redirect to admin"
// @Router /admin/subjects [post]
func (h *AdminHandler) CreateSubject(c *gin.Context) {
	var req models.CreateSubjectRequest
	if !bindForm(c, &req, adminPath) {
		return
	}
	subject, err := h.catalog.CreateSubject(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Fail(c, err, adminPath)
		return
	}
	response.Success(c, adminPath, "Subject "+subject.Code+" created.")
}

// AssignInstructor godoc
// @Summary Assign subject instructor
// @Description An empty instructor clears the assignment
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Param id path string true "Subject ID"
// @Param instructor_id formData string false "Instructor user ID"
// @Success 302 {string} string "Redirect to admin"
// @Router /admin/subjects/{id}/instructor [post]
func (h *AdminHandler) AssignInstructor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.AssignInstructorRequest
	if !bindForm(c, &req, adminPath) {
		return
	}
	if err := h.catalog.AssignInstructor(c.Request.Context(), currentUser(c), id, req); err != nil {
		response.Fail(c, err, adminPath)
		return
	}
	response.Success(c, adminPath, "Instructor assignment saved.")
}

// Enroll godoc
// @Summary Enroll student
// @Description A student can be enrolled in a subject at most once
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Param student_id formData string true "Student user ID"
// @Param subject_id formData string true "Subject ID"
// @Success 302 {string} string "Redirect to admin"
// @Router /admin/enrollments [post]
func (h *AdminHandler) Enroll(c *gin.Context) {
	var req models.CreateEnrollmentRequest
	if !bindForm(c, &req, adminPath) {
		return
	}
	if _, err := h.enrollments.Enroll(c.Request.Context(), currentUser(c), req); err != nil {
		response.Fail(c, err, adminPath)
		return
	}
	response.Success(c, adminPath, "Student enrolled.")
}

// UpdateEnrollmentStatus godoc
// @Summary Change enrollment status
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Param id path string true "Enrollment ID"
// @Param status formData string true "enrolled, dropped or completed"
// @Success 302 {string} string "Redirect to admin"
// @Router /admin/enrollments/{id}/status [post]
func (h *AdminHandler) UpdateEnrollmentStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateEnrollmentStatusRequest
	if !bindForm(c, &req, adminPath) {
		return
	}
	if err := h.enrollments.UpdateStatus(c.Request.Context(), currentUser(c), id, req); err != nil {
		response.Fail(c, err, adminPath)
		return
	}
	response.Success(c, adminPath, "Enrollment status updated.")
}

// ComputeGPA godoc
// @Summary Compute term GPA record
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Param student_id formData string true "Student user ID"
// @Param semester formData string true "1, 2 or summer"
// @Param academic_year formData string true "e.g. 2024-2025"
// @Success 302 {string} string "Redirect to admin"
// @Router /admin/gpa [post]
func (h *AdminHandler) ComputeGPA(c *gin.Context) {
	var req models.ComputeGPARequest
	if !bindForm(c, &req, adminPath) {
		return
	}
	record, err := h.gpa.ComputeRecord(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Fail(c, err, adminPath)
		return
	}
	response.Success(c, adminPath, "GPA recorded: "+record.GPA.StringFixed(2))
}

