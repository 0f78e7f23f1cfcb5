package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
)

// LoginPath is where the frontend sends unauthenticated users
const LoginPath = "/login"

// TokenVerifier turns an access token into the session it was issued for
type TokenVerifier interface {
	VerifyAccess(token string) (session.Session, error)
}

// AuthRequired rejects requests without a valid bearer token and attaches the
// session to the context for the handlers behind it
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "Authorization header is missing")
			return
		}

		s, err := verifier.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil || !s.Valid() {
			unauthorized(c, "Invalid or expired token")
			return
		}

		session.Set(c, s)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    msg,
		"redirect": LoginPath,
	})
}
