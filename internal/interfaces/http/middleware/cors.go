// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/evermore-storefront/internal/config"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// The session and request id headers are always allowed and exposed so a
// browser client on another origin can keep its cart session.
func CORS(cfg *config.Config) gin.HandlerFunc {
	allowedHeaders := withHeaders(cfg.Security.CORSAllowedHeaders, SessionHeader, RequestIDHeader)
	methods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	exposed := strings.Join([]string{SessionHeader, RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"}, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Header("Vary", "Origin")

		if origin != "" && isOriginAllowed(origin, cfg.Security.CORSAllowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", exposed)
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", allowedHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func withHeaders(headers []string, extra ...string) string {
	out := append([]string(nil), headers...)
	for _, h := range extra {
		found := false
		for _, existing := range out {
			if strings.EqualFold(existing, h) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, h)
		}
	}
	return strings.Join(out, ", ")
}

// isOriginAllowed checks if the origin is in the allowed list. "*.example.com"
// matches subdomains of example.com only.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(host, allowed[1:]) {
			return true
		}
	}
	return false
}
