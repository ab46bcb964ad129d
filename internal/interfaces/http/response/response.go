package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/pkg/logger"
)

// ErrorBody is the JSON envelope for every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Success writes a JSON body with the given status.
func Success(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

// Error maps an error to its HTTP representation. AppErrors pass through
// with their status and code; pipeline errors surface the failed stage as a
// 500; anything else becomes an opaque internal error.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, ErrorBody{Error: appErr.Code, Message: appErr.Message})
		return
	}

	var pipeErr *domainerrors.PipelineError
	if errors.As(err, &pipeErr) {
		c.JSON(http.StatusInternalServerError, ErrorBody{
			Error:   "PROCESSING_FAILED",
			Message: pipeErr.Error(),
		})
		return
	}

	logger.Error(c.Request.Context(), "unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorBody{
		Error:   "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}
