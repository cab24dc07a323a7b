package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kurologin/internal/shared/errors"
)

// APIResponse is the broker's wire format. Failure responses carry only
// success=false and a message; success responses carry either a session id
// plus message (begin) or a data payload (complete).
type APIResponse struct {
	Success   bool        `json:"success"`
	SessionID string      `json:"session_id,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SessionCreatedResponse sends the begin-login success payload
func SessionCreatedResponse(c *gin.Context, sessionID, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		SessionID: sessionID,
		Message:   message,
	})
}

// ErrorResponse sends an error response with custom status code and message
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Message: message,
	})
}

// ErrorResponseWithError sends an error response based on error type
func ErrorResponseWithError(c *gin.Context, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		c.JSON(appErr.Code, APIResponse{
			Success: false,
			Message: appErr.Message,
		})
		return
	}

	// For non-AppError, do not expose internal error details to prevent information leakage
	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: "internal server error occurred",
	})
}
