package response

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-records/pkg/errors"
	"github.com/noah-isme/school-records/pkg/middleware/requestid"
)

// Flash levels rendered by the layout template.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

var flashLevels = []string{LevelSuccess, LevelInfo, LevelError}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// AddFlash queues a message for the next page render.
func AddFlash(c *gin.Context, level, message string) {
	session := flashSession(c)
	if session == nil || message == "" {
		return
	}
	session.AddFlash(message, level)
	_ = session.Save()
}

// Flashes drains queued messages in display order.
func Flashes(c *gin.Context) []Flash {
	session := flashSession(c)
	if session == nil {
		return nil
	}
	var out []Flash
	for _, level := range flashLevels {
		for _, raw := range session.Flashes(level) {
			if msg, ok := raw.(string); ok {
				out = append(out, Flash{Level: level, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = session.Save()
	}
	return out
}

// HTML renders a template with the pending flashes attached under "Flashes".
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = Flashes(c)
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, data)
}

// Redirect issues a 302 to location.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// Success flashes message and redirects.
func Success(c *gin.Context, location, message string) {
	AddFlash(c, LevelSuccess, message)
	Redirect(c, location)
}

// Fail maps err onto the browser flow. Client errors (validation, permission,
// conflict, credentials) are flashed and redirected to fallback; missing
// resources render the 404 page; everything else renders the 500 page.
func Fail(c *gin.Context, err error, fallback string) {
	appErr := appErrors.FromError(err)
	switch {
	case appErr.Status == http.StatusNotFound:
		NotFound(c, appErr.Message)
	case appErr.Status >= http.StatusInternalServerError:
		Internal(c, err)
	default:
		AddFlash(c, LevelError, appErr.Message)
		Redirect(c, fallback)
	}
}

// NotFound renders the generic not-found page.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = appErrors.ErrNotFound.Message
	}
	HTML(c, http.StatusNotFound, "404.html", gin.H{"Message": message})
	c.Abort()
}

// Internal records err on the context for the access log and renders the error page.
func Internal(c *gin.Context, err error) {
	if err == nil {
		err = errors.New(appErrors.ErrInternal.Message)
	}
	_ = c.Error(err)
	HTML(c, http.StatusInternalServerError, "500.html", gin.H{"RequestID": requestid.Value(c)})
	c.Abort()
}

func flashSession(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}
