package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"cwportal/internal/services"
)

const signInPath = "/login"

// browser areas behind the gate; everything else bypasses it
func isProtectedPath(path string) bool {
	return strings.HasPrefix(path, "/dashboard")
}

// SessionGate redirects unauthenticated traffic away from protected browser
// areas. It is a pure decision function: verify the session cookie, allow or
// redirect, mutate nothing.
func SessionGate(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if !isProtectedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if raw, err := c.Cookie(services.SessionCookieName); err == nil {
			if number, ok := sessions.Verify(raw); ok {
				c.Set("phone", number)
				c.Next()
				return
			}
		}

		c.Redirect(http.StatusFound, signInPath+"?message="+url.QueryEscape("Please sign in"))
		c.Abort()
	}
}

// RequireSession guards JSON endpoints that need an authenticated phone and
// answers 401 instead of redirecting.
func RequireSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(services.SessionCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Not signed in"})
			return
		}
		number, ok := sessions.Verify(raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Not signed in"})
			return
		}
		c.Set("phone", number)
		c.Next()
	}
}
