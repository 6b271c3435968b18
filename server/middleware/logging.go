package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/codenexus/logger"
)

// quietPaths are probed frequently and only logged on failure.
var quietPaths = map[string]bool{
	"/health":  true,
	"/version": true,
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if quietPaths[c.Request.URL.Path] && status < 400 {
			return
		}

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.FullPath(),
			logger.FieldStatus, status,
			logger.FieldDuration, time.Since(start).Milliseconds(),
			RequestIDKey, c.GetString(RequestIDKey),
		)
		switch {
		case status >= 500:
			log.Error("request completed", fields)
		case status >= 400:
			log.Warn("request completed", fields)
		default:
			log.Debug("request completed", fields)
		}
	}
}
