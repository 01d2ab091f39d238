package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/internal/view"
)

const (
	testSubjectID      = "1b1b1b1b-1b1b-4b1b-8b1b-1b1b1b1b1b1b"
	testGradeID        = "2c2c2c2c-2c2c-4c2c-8c2c-2c2c2c2c2c2c"
	testAnnouncementID = "3d3d3d3d-3d3d-4d3d-8d3d-3d3d3d3d3d3d"
	testEnrollmentID   = "4e4e4e4e-4e4e-4e4e-8e4e-4e4e4e4e4e4e"
)

var (
	testSession    = middleware.SessionConfig{CookieName: "records_session"}
	testStudent    = &models.CurrentUser{ID: "s1", Username: "maria", FirstName: "Maria", Role: models.RoleStudent, SessionID: "sess-1"}
	testInstructor = &models.CurrentUser{ID: "i1", Username: "ada", FirstName: "Ada", Role: models.RoleInstructor}
	testAdmin      = &models.CurrentUser{ID: "a1", Username: "root", Role: models.RoleAdmin}
)

// newTestEngine builds an engine with templates, flash sessions and user
// attached to every request.
func newTestEngine(t *testing.T, user *models.CurrentUser) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := view.Load()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(sessions.Sessions("flash", cookie.NewStore([]byte("test-flash-secret"))))
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUserKey, user)
		}
		c.Next()
	})
	return r
}

func get(r *gin.Engine, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postForm(r *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// followFlash replays the redirect with the response cookies so the flashed
// message is rendered.
func followFlash(t *testing.T, r *gin.Engine, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	next := get(r, rec.Header().Get("Location"), rec.Result().Cookies()...)
	return next.Body.String()
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
