package middleware

import (
	"github.com/gin-gonic/gin"
	"screen2doc.backend/internal/metrics"
)

// MetricsMiddleware records the response status of every request.
func MetricsMiddleware(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		recorder.RecordHTTPStatus(c.Writer.Status())
	}
}
