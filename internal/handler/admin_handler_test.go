package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

type fakeAdminSrv struct {
	overview    *models.AdminOverview
	overviewErr error
	err         error

	course     models.CreateCourseRequest
	subject    models.CreateSubjectRequest
	assignedTo string
	enroll     models.CreateEnrollmentRequest
	statusID   string
	status     string
	gpa        models.ComputeGPARequest
}

func (f *fakeAdminSrv) AdminOverview(context.Context) (*models.AdminOverview, error) {
	return f.overview, f.overviewErr
}

func (f *fakeAdminSrv) CreateCourse(_ context.Context, _ *models.CurrentUser, req models.CreateCourseRequest) (*models.Course, error) {
	f.course = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Course{Code: req.Code}, nil
}

func (f *fakeAdminSrv) CreateSubject(_ context.Context, _ *models.CurrentUser, req models.CreateSubjectRequest) (*models.Subject, error) {
	f.subject = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Subject{Code: req.Code}, nil
}

func (f *fakeAdminSrv) AssignInstructor(_ context.Context, _ *models.CurrentUser, subjectID string, req models.AssignInstructorRequest) error {
	f.assignedTo = subjectID + "=" + req.InstructorID
	return f.err
}

func (f *fakeAdminSrv) Enroll(_ context.Context, _ *models.CurrentUser, req models.CreateEnrollmentRequest) (*models.Enrollment, error) {
	f.enroll = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Enrollment{}, nil
}

func (f *fakeAdminSrv) UpdateStatus(_ context.Context, _ *models.CurrentUser, id string, req models.UpdateEnrollmentStatusRequest) error {
	f.statusID = id
	f.status = req.Status
	return f.err
}

func (f *fakeAdminSrv) ComputeRecord(_ context.Context, _ *models.CurrentUser, req models.ComputeGPARequest) (*models.GPARecord, error) {
	f.gpa = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.GPARecord{GPA: decimal.RequireFromString("3.6")}, nil
}

func newAdminRouter(t *testing.T, srv *fakeAdminSrv) *gin.Engine {
	if srv.overview == nil {
		srv.overview = &models.AdminOverview{}
	}
	h := NewAdminHandler(srv, srv, srv)
	r := newTestEngine(t, testAdmin)
	r.GET("/admin", h.Overview)
	r.POST("/admin/courses", h.CreateCourse)
	r.POST("/admin/subjects", h.CreateSubject)
	r.POST("/admin/subjects/:id/instructor", h.AssignInstructor)
	r.POST("/admin/enrollments", h.Enroll)
	r.POST("/admin/enrollments/:id/status", h.UpdateEnrollmentStatus)
	r.POST("/admin/gpa", h.ComputeGPA)
	return r
}

func TestAdminHandlerOverview(t *testing.T) {
	srv := &fakeAdminSrv{overview: &models.AdminOverview{
		Courses: []models.Course{{ID: "c1", Code: "BSCS", Name: "Computer Science"}},
	}}
	r := newAdminRouter(t, srv)

	rec := get(r, "/admin")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "BSCS")
	assert.Contains(t, body, "First Semester")
}

func TestAdminHandlerOverviewFailureRendersErrorPage(t *testing.T) {
	r := newAdminRouter(t, &fakeAdminSrv{overviewErr: errors.New("db down")})

	rec := get(r, "/admin")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminHandlerCreateCourse(t *testing.T) {
	srv := &fakeAdminSrv{}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/courses", url.Values{"code": {"BSCS"}, "name": {"Computer Science"}})

	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, "Computer Science", srv.course.Name)
	assert.Contains(t, followFlash(t, r, rec), "Course BSCS created.")
}

func TestAdminHandlerCreateSubjectBindsUnits(t *testing.T) {
	srv := &fakeAdminSrv{}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/subjects", url.Values{"code": {"CS101"}, "name": {"Programming"}, "units": {"3"}, "semester": {"1"}})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 3, srv.subject.Units)
	assert.Contains(t, followFlash(t, r, rec), "Subject CS101 created.")
}

func TestAdminHandlerCreateSubjectRejectsBadUnits(t *testing.T) {
	srv := &fakeAdminSrv{}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/subjects", url.Values{"code": {"CS101"}, "units": {"three"}})

	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Empty(t, srv.subject.Code)
}

func TestAdminHandlerAssignInstructor(t *testing.T) {
	srv := &fakeAdminSrv{}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/subjects/"+testSubjectID+"/instructor", url.Values{"instructor_id": {"i1"}})

	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, testSubjectID+"=i1", srv.assignedTo)
}

func TestAdminHandlerEnrollConflict(t *testing.T) {
	srv := &fakeAdminSrv{err: appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this subject")}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/enrollments", url.Values{"student_id": {"s1"}, "subject_id": {testSubjectID}})

	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, testSubjectID, srv.enroll.SubjectID)
	assert.Contains(t, followFlash(t, r, rec), "student is already enrolled in this subject")
}

func TestAdminHandlerUpdateEnrollmentStatus(t *testing.T) {
	srv := &fakeAdminSrv{}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/enrollments/"+testEnrollmentID+"/status", url.Values{"status": {"dropped"}})

	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, testEnrollmentID, srv.statusID)
	assert.Equal(t, "dropped", srv.status)
}

func TestAdminHandlerComputeGPA(t *testing.T) {
	srv := &fakeAdminSrv{}
	r := newAdminRouter(t, srv)

	rec := postForm(r, "/admin/gpa", url.Values{"student_id": {"s1"}, "semester": {"1"}, "academic_year": {"2024-2025"}})

	assert.Equal(t, "2024-2025", srv.gpa.AcademicYear)
	assert.Contains(t, followFlash(t, r, rec), "GPA recorded: 3.60")
}
