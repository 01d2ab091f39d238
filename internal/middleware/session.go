package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records/internal/models"
	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.CurrentUser, error)
}

// SessionConfig names the login cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
}

// Session resolves the login cookie into the current user. Requests without a
// valid session continue anonymously; stale cookies are cleared.
func Session(auth authenticator, cfg SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			var appErr *appErrors.Error
			if !errors.As(err, &appErr) || appErr.Status >= http.StatusInternalServerError {
				logger.Warn("failed to authenticate session", zap.Error(err))
			}
			ClearSessionCookie(c, cfg)
			c.Next()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// SetSessionCookie writes the signed session token.
func SetSessionCookie(c *gin.Context, cfg SessionConfig, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, maxAge, "/", "", cfg.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.CurrentUser {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.CurrentUser)
	if !ok {
		return nil
	}
	return user
}
