package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LegacyRedirects maps old page addresses to their current path.
var LegacyRedirects = map[string]string{
	"/index.html":         "/",
	"/home":               "/",
	"/authentication":     "/login",
	"/add-new-project":    "/new-project",
	"/portfolio-details":  "/portfolio",
	"/portfolio-details/": "/portfolio",
}

func RedirectMiddleware(redirects map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if to, ok := redirects[c.Request.URL.Path]; ok {
			if q := c.Request.URL.RawQuery; q != "" {
				to += "?" + q
			}
			c.Redirect(http.StatusMovedPermanently, to)
			c.Abort()
			return
		}

		c.Next()
	}
}
