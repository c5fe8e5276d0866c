package response

import (
	"net/http"

	"codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the standard API envelope.
type Response struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Details interface{}      `json:"details,omitempty"`
}

// Success sends a successful response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.Success,
		Message: "Success",
		Data:    data,
	})
}

// Error sends an error response, extracting the code from err.
func Error(c *gin.Context, err error) {
	customErr := errors.GetError(err)
	logger.Error(c.Request.Context(), "request error",
		zap.Int("code", int(customErr.Code)),
		zap.String("message", customErr.Error()),
	)
	c.JSON(httpStatus(customErr.Code), Response{
		Code:    customErr.Code,
		Message: customErr.Error(),
		Details: customErr.Details,
	})
}

// BadRequest sends an InvalidParams response with a custom message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    errors.InvalidParams,
		Message: message,
	})
}

// NotFound sends a NotFound response with a custom message.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:    errors.NotFound,
		Message: message,
	})
}

func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidParams, errors.ValidationFailed, errors.RequiredFieldEmpty:
		return http.StatusBadRequest
	case errors.NotFound, errors.RecordNotFound, errors.SubmissionNotFound, errors.LeaderboardNotFound:
		return http.StatusNotFound
	case errors.ServiceUnavailable, errors.SandboxUnavailable, errors.QueueConnectionError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
