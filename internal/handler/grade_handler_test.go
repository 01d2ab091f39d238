package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

type fakeGradeSrv struct {
	detail    *models.GradeDetail
	updateErr error
	lastID    string
	lastReq   models.UpdateGradeRequest
	summary   *models.GradeSummary
}

func (f *fakeGradeSrv) Edit(_ context.Context, _ *models.CurrentUser, id string) (*models.GradeDetail, error) {
	f.lastID = id
	if f.detail == nil {
		return nil, appErrors.ErrNotFound
	}
	return f.detail, nil
}

func (f *fakeGradeSrv) Update(_ context.Context, _ *models.CurrentUser, id string, req models.UpdateGradeRequest) (*models.GradeDetail, error) {
	f.lastID = id
	f.lastReq = req
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.detail, nil
}

func (f *fakeGradeSrv) Summary(context.Context, string) (*models.GradeSummary, error) {
	return f.summary, nil
}

func sampleGradeDetail() *models.GradeDetail {
	return &models.GradeDetail{
		Grade: models.Grade{
			ID:            testGradeID,
			PrelimGrade:   decimal.NewNullDecimal(decimal.NewFromInt(90)),
			PrelimWeight:  decimal.NewFromInt(30),
			MidtermWeight: decimal.NewFromInt(30),
			FinalWeight:   decimal.NewFromInt(40),
		},
		SubjectID:   testSubjectID,
		SubjectCode: "CS101",
		StudentName: "Maria Lopez",
	}
}

func newGradeRouter(t *testing.T, srv *fakeGradeSrv) *gin.Engine {
	h := NewGradeHandler(srv)
	r := newTestEngine(t, testInstructor)
	r.GET("/grades/edit/:id", h.Edit)
	r.POST("/grades/edit/:id", h.Update)
	r.GET("/accounts/grades", h.All)
	r.GET("/courses/subject/:id/students", func(c *gin.Context) {
		render(c, "404.html", "stub", gin.H{"Message": "students"})
	})
	return r
}

func TestGradeHandlerEditRendersForm(t *testing.T) {
	srv := &fakeGradeSrv{detail: sampleGradeDetail()}
	r := newGradeRouter(t, srv)

	rec := get(r, "/grades/edit/"+testGradeID)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Maria Lopez")
	assert.Contains(t, body, `value="90.00"`)
	assert.Contains(t, body, `value="40.00"`)
}

func TestGradeHandlerEditRejectsMalformedID(t *testing.T) {
	srv := &fakeGradeSrv{detail: sampleGradeDetail()}
	r := newGradeRouter(t, srv)

	rec := get(r, "/grades/edit/not-a-uuid")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, srv.lastID)
}

func TestGradeHandlerEditMissingGrade(t *testing.T) {
	r := newGradeRouter(t, &fakeGradeSrv{})

	rec := get(r, "/grades/edit/"+testGradeID)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGradeHandlerUpdateRedirectsToRoster(t *testing.T) {
	srv := &fakeGradeSrv{detail: sampleGradeDetail()}
	r := newGradeRouter(t, srv)

	rec := postForm(r, "/grades/edit/"+testGradeID, url.Values{
		"prelim_grade":  {"90"},
		"midterm_grade": {"85"},
		"final_grade":   {"92"},
		"remarks":       {"good"},
	})

	assert.Equal(t, "/courses/subject/"+testSubjectID+"/students", rec.Header().Get("Location"))
	assert.Equal(t, testGradeID, srv.lastID)
	assert.Equal(t, "85", srv.lastReq.MidtermGrade)
	assert.Equal(t, "good", srv.lastReq.Remarks)
	assert.Contains(t, followFlash(t, r, rec), "Grades updated successfully for Maria Lopez!")
}

func TestGradeHandlerUpdateInvalidWeights(t *testing.T) {
	srv := &fakeGradeSrv{detail: sampleGradeDetail(), updateErr: appErrors.ErrInvalidWeights}
	r := newGradeRouter(t, srv)

	rec := postForm(r, "/grades/edit/"+testGradeID, url.Values{
		"prelim_weight":  {"30"},
		"midterm_weight": {"30"},
		"final_weight":   {"39"},
	})

	assert.Equal(t, "/grades/edit/"+testGradeID, rec.Header().Get("Location"))
	assert.Contains(t, followFlash(t, r, rec), "weights must total exactly 100")
}

func TestGradeHandlerAll(t *testing.T) {
	letter := "1.75"
	srv := &fakeGradeSrv{summary: &models.GradeSummary{
		Grades: []models.GradeDetail{{
			SubjectCode: "CS101",
			SubjectName: "Programming",
			Grade:       models.Grade{WeightedAverage: decimal.NewNullDecimal(decimal.RequireFromString("89.3")), LetterGrade: &letter},
		}},
		TotalSubjects: 1,
		Passed:        1,
		GPA:           decimal.RequireFromString("3.25"),
	}}
	r := newGradeRouter(t, srv)

	rec := get(r, "/accounts/grades")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "89.30")
	assert.Contains(t, body, "3.25")
	assert.Contains(t, body, "Programming")
}
