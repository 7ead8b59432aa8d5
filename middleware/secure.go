package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"hotel-frontdesk/utils"
)

// SecureHeaders sets the standard browser hardening headers.
func SecureHeaders(production bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !production,
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}

// Environment exposes APP_ENV to handlers.
func Environment(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.EnvironmentKey, env)
		c.Next()
	}
}
