package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-orders-api/pkg/response"
)

// Recovery turns a panic into the generic 500 envelope and logs it.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"panic":      recovered,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString("request_id"),
			}).Error("panic recovered")
		}
		response.Error(c, http.StatusInternalServerError, "something went wrong", "internal error")
		c.Abort()
	})
}
