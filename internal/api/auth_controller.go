package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/service"
)

// AuthController 认证控制器
type AuthController struct {
	userService  service.UserService
	tokenManager *auth.TokenManager
}

// NewAuthController 创建认证控制器
func NewAuthController(userService service.UserService, tokenManager *auth.TokenManager) *AuthController {
	return &AuthController{
		userService:  userService,
		tokenManager: tokenManager,
	}
}

// LoginRequest 登录请求参数
// @Description 邮箱密码登录的请求参数
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
// @Description 登录成功返回访问令牌与用户信息
type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Login 登录
// @Summary      登录
// @Description  邮箱密码登录,成功返回访问令牌
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录参数"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	token, err := c.tokenManager.Generate(user.UID, user.Name, user.Email, user.Role)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to issue token", "")
		return
	}

	Success(ctx, LoginResponse{Token: token, User: user})
}
