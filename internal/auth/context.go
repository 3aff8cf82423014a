package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// ErrNoActor 请求上下文缺少认证用户
var ErrNoActor = errors.New("no authenticated user in context")

// ActorFromContext 从请求上下文取出认证用户
// 由 AuthMiddleware 写入,仅在认证路由组内可用
func ActorFromContext(c *gin.Context) (workflow.Actor, error) {
	uid := c.GetString("user_id")
	if uid == "" {
		return workflow.Actor{}, ErrNoActor
	}

	role, ok := workflow.ParseRole(c.GetString("role"))
	if !ok {
		return workflow.Actor{}, errors.New("unknown role in token")
	}

	return workflow.Actor{
		UID:  uid,
		Name: c.GetString("name"),
		Role: role,
	}, nil
}
