package middleware

import (
	"net/http"

	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/web/session"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware writes one log line for every state-changing admin
// request: who, what, from where and with which outcome.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !isMutation(c) {
			return
		}
		user := session.GetLoginUser(c)
		userID, email := 0, "anonymous"
		if user != nil {
			userID, email = user.Id, user.Email
		}
		logger.Noticef("audit request=%s user=%d(%s) ip=%s %s %s -> %d",
			RequestID(c), userID, email, c.ClientIP(),
			c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

// isMutation reports whether the request could have changed the catalog.
// Deletions arrive as GET, matching the links rendered on the list page.
func isMutation(c *gin.Context) bool {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return true
	}
	return c.FullPath() == "/delete/:id"
}
