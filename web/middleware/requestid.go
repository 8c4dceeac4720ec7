package middleware

import (
	"time"

	"github.com/dboika/folio/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestLogMiddleware tags every request with an id, echoes it in the
// response and logs one line once the handler chain has finished.
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		line := "%s %s %s %d %s %s"
		args := []any{id, c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.ClientIP()}
		switch {
		case status >= 500:
			logger.Errorf(line, args...)
		case status >= 400:
			logger.Infof(line, args...)
		default:
			logger.Debugf(line, args...)
		}
	}
}

// RequestID returns the id assigned by RequestLogMiddleware.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
