package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/service"
)

// UserController 用户控制器
type UserController struct {
	userService service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// UpdateRoleRequest 变更角色的请求参数
// @Description 变更用户角色的请求参数,仅管理员可调用
type UpdateRoleRequest struct {
	Role string `json:"role" example:"reviewer_ops" binding:"required"`
}

// Create 创建用户
// @Summary      创建用户
// @Description  创建新用户,仅管理员可调用
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Param        request body service.CreateUserRequest true "用户信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users [post]
// @Security     BearerAuth
func (c *UserController) Create(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req service.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// Me 获取当前用户档案
// @Summary      获取个人档案
// @Description  获取当前认证用户的档案,银行账号以明文返回
// @Tags         用户管理
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
// @Security     BearerAuth
func (c *UserController) Me(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	user, err := c.userService.Get(actor.UID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// UpdateProfile 更新个人档案
// @Summary      更新个人档案
// @Description  更新银行信息/电话/默认签名,本人或管理员可调用
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Param        uid path string true "用户 UID"
// @Param        request body service.UpdateProfileRequest true "档案字段"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/{uid}/profile [put]
// @Security     BearerAuth
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), actor, ctx.Param("uid"), &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// UpdateRole 变更用户角色
// @Summary      变更用户角色
// @Description  变更用户角色,仅管理员可调用
// @Tags         用户管理
// @Accept       json
// @Produce      json
// @Param        uid path string true "用户 UID"
// @Param        request body UpdateRoleRequest true "角色"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/{uid}/role [put]
// @Security     BearerAuth
func (c *UserController) UpdateRole(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.userService.UpdateRole(ctx.Request.Context(), actor, ctx.Param("uid"), req.Role); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}
