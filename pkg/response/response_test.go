package response

import (
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

const testTemplates = `{{define "page.html"}}{{range .Flashes}}[{{.Level}}:{{.Message}}]{{end}}{{end}}` +
	`{{define "404.html"}}missing: {{.Message}}{{end}}` +
	`{{define "500.html"}}oops {{.RequestID}}{{end}}`

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplates)))
	r.Use(sessions.Sessions("flash", cookie.NewStore([]byte("test-secret"))))
	r.GET("/page", func(c *gin.Context) { HTML(c, http.StatusOK, "page.html", nil) })
	r.GET("/invalid", func(c *gin.Context) {
		Fail(c, appErrors.Clone(appErrors.ErrValidation, "units must be between 1 and 6"), "/page")
	})
	r.GET("/forbidden", func(c *gin.Context) { Fail(c, appErrors.ErrForbidden, "/page") })
	r.GET("/missing", func(c *gin.Context) { Fail(c, appErrors.Clone(appErrors.ErrNotFound, "grade not found"), "/page") })
	r.GET("/broken", func(c *gin.Context) { Fail(c, errors.New("connection reset"), "/page") })
	r.GET("/saved", func(c *gin.Context) { Success(c, "/page", "Grade saved.") })
	return r
}

func follow(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, *httptest.ResponseRecorder) {
	t.Helper()
	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusFound, first.Code)

	req := httptest.NewRequest(http.MethodGet, first.Header().Get("Location"), nil)
	for _, ck := range first.Result().Cookies() {
		req.AddCookie(ck)
	}
	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)
	return first, second
}

func TestFailFlashesValidationMessage(t *testing.T) {
	r := newRouter(t)
	first, second := follow(t, r, "/invalid")

	assert.Equal(t, "/page", first.Header().Get("Location"))
	assert.Equal(t, "[error:units must be between 1 and 6]", second.Body.String())
}

func TestFailTreatsForbiddenLikeValidation(t *testing.T) {
	r := newRouter(t)
	_, second := follow(t, r, "/forbidden")
	assert.Equal(t, "[error:access denied]", second.Body.String())
}

func TestSuccessFlash(t *testing.T) {
	r := newRouter(t)
	_, second := follow(t, r, "/saved")
	assert.Equal(t, "[success:Grade saved.]", second.Body.String())
}

func TestFailNotFoundRendersPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing: grade not found", rec.Body.String())
}

func TestFailInternalRendersErrorPage(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "oops")
}

func TestFlashesWithoutSessionMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	AddFlash(c, LevelInfo, "ignored")
	assert.Nil(t, Flashes(c))
}
