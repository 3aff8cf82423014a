package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// HandleServiceError 把领域错误映射为 HTTP 响应
//
// 授权失败 403,校验失败 400,并发冲突 409,前置条件不满足 422,
// 其余一律 500 并隐藏内部细节。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnauthorized):
		Error(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, workflow.ErrValidation):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, workflow.ErrConflict):
		Error(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, workflow.ErrPrecondition):
		Error(c, http.StatusUnprocessableEntity, "precondition failed", err.Error())
	default:
		GetLogger().WithError(err).Error("internal error")
		Error(c, http.StatusInternalServerError, "internal server error", "")
	}
}
