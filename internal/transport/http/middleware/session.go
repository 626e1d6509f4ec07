package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/requestid"
	"github.com/ErlanBelekov/companydesk/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized       = "Unauthorized"
	errServiceUnavailable = "Service temporarily unavailable"
)

// Authenticator resolves a cookie pair to the owning email.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer, shadow string) (string, error)
}

// Session requires a valid cookie pair and sets "email" in the gin context.
// Every rejection gets the same 401; the reason is only logged.
func Session(auth Authenticator, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "session_middleware")
	return func(c *gin.Context) {
		bearer, _ := c.Cookie(session.BearerCookie)
		shadow, _ := c.Cookie(session.ShadowCookie)

		email, err := auth.Authenticate(c.Request.Context(), bearer, shadow)
		if err != nil {
			if domain.IsRejection(err) {
				logger.DebugContext(c.Request.Context(), "session rejected", "reason", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "session check", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": errServiceUnavailable})
			return
		}

		c.Set("email", email)
		c.Request = c.Request.WithContext(requestid.WithUser(c.Request.Context(), email))
		c.Next()
	}
}
