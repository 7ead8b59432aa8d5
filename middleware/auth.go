package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/utils"
)

// IdentityContextKey is the key used to store the caller in the Gin context.
const IdentityContextKey = "identity"

// Auth rejects requests without a valid bearer token. A missing or invalid
// token is a hard 403, never an anonymous pass-through.
func Auth(verifier auth.Verifier, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := logrus.Fields{"path": c.Request.URL.Path, "ip": c.ClientIP()}

		header := c.GetHeader("Authorization")
		if header == "" {
			logger.WithFields(fields).Warn("auth failed: missing authorization header")
			utils.JSONError(c, http.StatusForbidden, "error.unauthorized", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			logger.WithFields(fields).Warn("auth failed: malformed authorization header")
			utils.JSONError(c, http.StatusForbidden, "error.unauthorized", "Expected: Bearer <token>")
			return
		}

		identity, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.WithFields(fields).WithError(err).Warn("auth failed: invalid token")
			utils.JSONError(c, http.StatusForbidden, "error.unauthorized", "Invalid or expired token")
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// GetIdentity returns the caller stored by Auth.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(IdentityContextKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}
