package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/codenexus/errors"
	"github.com/kbukum/codenexus/logger"
)

// Recovery returns a Gin middleware that turns a handler panic into a 500
// INTERNAL_ERROR response and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					RequestIDKey, c.GetString(RequestIDKey),
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": apperrors.Internal(fmt.Errorf("%v", r)),
				})
			}
		}()
		c.Next()
	}
}
