// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie holds the anonymous shopper session id
	SessionCookie = "evermore_session"
	// SessionHeader lets API clients pass the session id without cookies
	SessionHeader = "X-Session-ID"

	sessionIDKey = "session_id"
)

// Session ensures every request carries a shopper session id.
// The id comes from the header, then the cookie; otherwise a new one is issued.
func Session(maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !validSessionID(id) {
			id, _ = c.Cookie(SessionCookie)
		}
		if !validSessionID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, maxAge, "/", "", secure, true)
		}

		c.Set(sessionIDKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// GetSessionID returns the shopper session id set by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
