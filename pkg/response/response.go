package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the success envelope.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type ErrorBody struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   ErrorBody `json:"error"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes a failure envelope. The error code mirrors the HTTP status.
func Error(ctx *gin.Context, status int, message, description string) ErrorResponse {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := ErrorResponse{
		Success: false,
		Message: message,
		Error:   ErrorBody{Code: status, Description: description},
	}
	ctx.JSON(status, resp)
	return resp
}
