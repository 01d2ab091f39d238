package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records/internal/models"
	"github.com/noah-isme/school-records/pkg/response"
)

// Redirect targets used by the access gates.
const (
	LoginPath     = "/accounts/login"
	DashboardPath = "/dashboard"
)

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequireRoles admits only users holding one of roles. Everyone else is sent
// back to the dashboard with an access denied message.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			redirectToLogin(c)
			return
		}
		if !user.HasRole(roles...) {
			response.AddFlash(c, response.LevelError, "Access denied")
			response.Redirect(c, DashboardPath)
			return
		}
		c.Next()
	}
}

// RedirectAuthenticated keeps logged in users away from the login and
// registration pages.
func RedirectAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			response.Redirect(c, DashboardPath)
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	target := LoginPath
	if c.Request.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}
	response.AddFlash(c, response.LevelInfo, "Please log in to continue.")
	response.Redirect(c, target)
}
