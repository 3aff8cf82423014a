package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/trustspirit/reimburse-gin/internal/api"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// TestHandleServiceError 测试领域错误到 HTTP 状态码的映射
func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthorized", workflow.NewUnauthorizedError("cannot review your own request"), http.StatusForbidden},
		{"validation", workflow.NewValidationError("at least one item is required"), http.StatusBadRequest},
		{"conflict", workflow.NewConflictError("request already handled"), http.StatusConflict},
		{"precondition", workflow.NewPreconditionError("missing approval signature"), http.StatusUnprocessableEntity},
		{"internal", errors.New("database gone"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)

			api.HandleServiceError(ctx, c.err)
			assert.Equal(t, c.status, w.Code)

			// 内部错误不向客户端泄露细节
			if c.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "database gone")
			} else {
				assert.Contains(t, w.Body.String(), c.err.Error())
			}
		})
	}
}

// TestSuccessResponse 测试统一成功响应格式
func TestSuccessResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	api.Success(ctx, gin.H{"id": "req-001"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":0`)
	assert.Contains(t, w.Body.String(), "req-001")
}

// TestErrorResponse_CodeClamping 测试非法状态码回退到 500
func TestErrorResponse_CodeClamping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	api.Error(ctx, 42, "weird", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
