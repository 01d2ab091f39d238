package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

var testSession = SessionConfig{CookieName: "records_session"}

type fakeAuthenticator struct {
	users map[string]*models.CurrentUser
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.CurrentUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return user, nil
}

func newTestRouter(auth authenticator, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("flash", cookie.NewStore([]byte("flash-secret"))))
	r.Use(Session(auth, testSession, nil))
	chain := append(handlers, func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username)
	})
	r.GET("/page", chain...)
	r.POST("/page", chain...)
	return r
}

func requestWithToken(method, token string) *http.Request {
	req := httptest.NewRequest(method, "/page", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testSession.CookieName, Value: token})
	}
	return req
}

func hasCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return true
		}
	}
	return false
}

func TestSessionAttachesUser(t *testing.T) {
	auth := &fakeAuthenticator{users: map[string]*models.CurrentUser{"good": {ID: "u1", Username: "maria", Role: models.RoleStudent}}}
	r := newTestRouter(auth)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, "good"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "maria", rec.Body.String())
}

func TestSessionClearsStaleCookie(t *testing.T) {
	r := newTestRouter(&fakeAuthenticator{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, "expired"))

	assert.Equal(t, "anonymous", rec.Body.String())
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == testSession.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
	assert.False(t, hasCookie(rec, "flash"))
}

func TestSessionContinuesOnBackendFailure(t *testing.T) {
	r := newTestRouter(&fakeAuthenticator{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, "any"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireLoginRedirects(t *testing.T) {
	r := newTestRouter(&fakeAuthenticator{}, RequireLogin())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, ""))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath+"?next=%2Fpage", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodPost, ""))
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequireRoles(t *testing.T) {
	auth := &fakeAuthenticator{users: map[string]*models.CurrentUser{
		"student":    {ID: "s1", Username: "stu", Role: models.RoleStudent},
		"instructor": {ID: "i1", Username: "ins", Role: models.RoleInstructor},
	}}
	r := newTestRouter(auth, RequireRoles(models.RoleInstructor, models.RoleAdmin))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, "instructor"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ins", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, "student"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
	assert.True(t, hasCookie(rec, "flash"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, ""))
	assert.Equal(t, LoginPath+"?next=%2Fpage", rec.Header().Get("Location"))
}

func TestRedirectAuthenticated(t *testing.T) {
	auth := &fakeAuthenticator{users: map[string]*models.CurrentUser{"good": {ID: "u1", Username: "maria"}}}
	r := newTestRouter(auth, RedirectAuthenticated())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, "good"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, requestWithToken(http.MethodGet, ""))
	assert.Equal(t, "anonymous", rec.Body.String())
}
