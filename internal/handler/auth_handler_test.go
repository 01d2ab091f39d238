package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

type fakeAuthSrv struct {
	loginErr    error
	registerErr error
	logouts     int
	lastLogin   models.LoginRequest
	lastReg     models.RegisterRequest
}

func (f *fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest, _ models.RequestMeta) (*models.User, error) {
	f.lastReg = req
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "new", Username: req.Username, Role: req.Role}, nil
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResult{Token: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuthSrv) Logout(context.Context, *models.CurrentUser, models.RequestMeta) error {
	f.logouts++
	return nil
}

func TestAuthHandlerLoginSetsCookie(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv, testSession)
	r := newTestEngine(t, nil)
	r.POST("/accounts/login", h.Login)

	rec := postForm(r, "/accounts/login", url.Values{"username": {"maria"}, "password": {"secret123"}, "next": {"/courses/subjects"}})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/courses/subjects", rec.Header().Get("Location"))
	session := findCookie(rec, testSession.CookieName)
	require.NotNil(t, session)
	assert.Equal(t, "signed-token", session.Value)
	assert.True(t, session.HttpOnly)
	assert.Greater(t, session.MaxAge, 3500)
	assert.Equal(t, "maria", srv.lastLogin.Username)
	assert.NotEmpty(t, srv.lastLogin.IP)
}

func TestAuthHandlerLoginRejectsOffsiteNext(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{}, testSession)
	r := newTestEngine(t, nil)
	r.POST("/accounts/login", h.Login)

	rec := postForm(r, "/accounts/login", url.Values{"username": {"maria"}, "password": {"x"}, "next": {"//evil.example"}})
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestAuthHandlerLoginFailureFlashes(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}, testSession)
	r := newTestEngine(t, nil)
	r.GET("/accounts/login", h.LoginPage)
	r.POST("/accounts/login", h.Login)

	rec := postForm(r, "/accounts/login", url.Values{"username": {"maria"}, "password": {"wrong"}})

	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, testSession.CookieName))
	assert.Contains(t, followFlash(t, r, rec), "invalid username or password")
}

func TestAuthHandlerRegister(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv, testSession)
	r := newTestEngine(t, nil)
	r.GET("/accounts/login", h.LoginPage)
	r.POST("/accounts/register", h.Register)

	rec := postForm(r, "/accounts/register", url.Values{
		"username": {"maria"}, "role": {"student"}, "password": {"secret123"}, "password_confirm": {"secret123"},
	})

	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
	assert.Equal(t, models.RoleStudent, srv.lastReg.Role)
	assert.Contains(t, followFlash(t, r, rec), "Registration successful")
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	h := NewAuthHandler(&fakeAuthSrv{registerErr: appErrors.Clone(appErrors.ErrConflict, "a user with that username already exists")}, testSession)
	r := newTestEngine(t, nil)
	r.GET("/accounts/register", h.RegisterPage)
	r.POST("/accounts/register", h.Register)

	rec := postForm(r, "/accounts/register", url.Values{"username": {"maria"}})

	assert.Equal(t, "/accounts/register", rec.Header().Get("Location"))
	assert.Contains(t, followFlash(t, r, rec), "a user with that username already exists")
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	srv := &fakeAuthSrv{}
	h := NewAuthHandler(srv, testSession)
	r := newTestEngine(t, testStudent)
	r.POST("/accounts/logout", h.Logout)

	rec := postForm(r, "/accounts/logout", nil)

	assert.Equal(t, "/accounts/login", rec.Header().Get("Location"))
	assert.Equal(t, 1, srv.logouts)
	session := findCookie(rec, testSession.CookieName)
	require.NotNil(t, session)
	assert.Less(t, session.MaxAge, 0)
}
