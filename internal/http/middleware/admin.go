package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AdminAPIKeyHeader = "X-Admin-API-Key"

// RequireAdminAPIKey guards the admin surface with a static shared secret.
// 503 when no key is configured, 401 when the header is absent, 403 when it does not match.
// Errors are plain text like the rest of the files surface.
func RequireAdminAPIKey(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminAPIKey == "" {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			c.Writer.WriteString("admin API not configured") //nolint:errcheck
			return
		}

		apiKey := c.GetHeader(AdminAPIKeyHeader)
		if apiKey == "" {
			apiKey = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if apiKey == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			c.Writer.WriteString("Missing API key") //nolint:errcheck
			return
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminAPIKey)) != 1 {
			slog.WarnContext(c.Request.Context(), "admin API key mismatch",
				"client_ip", c.ClientIP())
			c.AbortWithStatus(http.StatusForbidden)
			c.Writer.WriteString("Invalid API key") //nolint:errcheck
			return
		}

		c.Next()
	}
}
