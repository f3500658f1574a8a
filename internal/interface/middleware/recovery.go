package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-admin/pkg/response"
)

// Recovery turns a panic into a 500 envelope the dashboard can offer to retry.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.WithFields(logrus.Fields{
				"panic":      rec,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString("request_id"),
				"stack":      string(debug.Stack()),
			}).Error("handler panicked")
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.ErrorMeta[any](c, http.StatusInternalServerError, "something went wrong", nil, gin.H{"retry": true})
			c.Abort()
		}()
		c.Next()
	}
}
