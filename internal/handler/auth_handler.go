package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/middleware"
	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/pkg/response"
)

const (
	loginPath    = "/accounts/login"
	registerPath = "/accounts/register"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest, meta models.RequestMeta) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	Logout(ctx context.Context, user *models.CurrentUser, meta models.RequestMeta) error
}

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	service authService
	session middleware.SessionConfig
	now     func() time.Time
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, session middleware.SessionConfig) *AuthHandler {
	return &AuthHandler{service: svc, session: session, now: time.Now}
}

// LoginPage godoc
// @Summary Login form
// @Tags Accounts
// @Produce html
// @Param next query string false "Path to return to after login"
// @Success 200 {string} string "HTML page"
// @Router /accounts/login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, "login.html", "Log in", gin.H{"Next": safeRedirect(c.Query("next"), "")})
}

// Login godoc
// @Summary Authenticate user
// @Description Verifies the credentials and sets the session cookie
// @Tags Accounts
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 302 {string} string "Redirect to the dashboard"
// @Router /accounts/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindForm(c, &req, loginPath) {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err, loginPath)
		return
	}

	maxAge := int(res.ExpiresAt.Sub(h.now()).Seconds())
	middleware.SetSessionCookie(c, h.session, res.Token, maxAge)
	response.Success(c, safeRedirect(c.PostForm("next"), middleware.DashboardPath), "Login successful!")
}

// RegisterPage godoc
// @Summary Registration form
// @Tags Accounts
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /accounts/register [get]
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, "register.html", "Register", gin.H{"Form": models.RegisterRequest{Role: models.RoleStudent}})
}

// Register godoc
// @Summary Create account
// @Description Creates a student or instructor account
// @Tags Accounts
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param role formData string true "student or instructor"
// @Param password formData string true "Password (min 8)"
// @Param password_confirm formData string true "Password confirmation"
// @Success 302 {string} string "Redirect to the login page"
// @Router /accounts/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindForm(c, &req, registerPath) {
		return
	}
	if _, err := h.service.Register(c.Request.Context(), req, requestMeta(c)); err != nil {
		response.Fail(c, err, registerPath)
		return
	}
	response.Success(c, loginPath, "Registration successful! Please log in to continue.")
}

// Logout godoc
// @Summary End session
// @Tags Accounts
// @Success 302 {string} string "Redirect to the login page"
// @Router /accounts/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), currentUser(c), requestMeta(c)); err != nil {
		response.Internal(c, err)
		return
	}
	middleware.ClearSessionCookie(c, h.session)
	response.Success(c, loginPath, "You have been logged out successfully")
}
