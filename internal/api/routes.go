package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/config"
	"github.com/trustspirit/reimburse-gin/internal/websocket"
	"gorm.io/gorm"
)

// Controllers 路由所需的控制器集合
type Controllers struct {
	Request    *RequestController
	Settlement *SettlementController
	Project    *ProjectController
	User       *UserController
	Auth       *AuthController
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, db *gorm.DB, hub *websocket.Hub, tokenManager *auth.TokenManager, ctrl *Controllers) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(HTTPSRedirectMiddlewareWithConfig(config.IsProduction(cfg)))
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(&cfg.CORS))
	router.Use(RequestLogMiddleware())
	router.Use(ErrorHandlerMiddleware())
	router.Use(VersionMiddleware())
	router.Use(I18nMiddleware())
	router.Use(SLAMonitorMiddleware(nil))
	router.Use(RateLimitMiddleware(100, 200))
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware())
	}

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由
	if hub != nil && tokenManager != nil {
		router.GET("/ws/events", websocket.WebSocketHandler(hub, tokenManager))
	}

	// SSE 路由
	if tokenManager != nil {
		router.GET("/sse/requests/:id", SSEHandler(tokenManager))
	}

	// Swagger UI 路由
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 票据文件静态服务
	router.Static("/uploads", cfg.Storage.Dir)

	// API v1 路由组
	v1 := router.Group("/api/v1")

	// 登录无需认证
	v1.POST("/auth/login", ctrl.Auth.Login)

	// 其余路由全部要求认证
	authed := v1.Group("")
	authed.Use(auth.AuthMiddleware(tokenManager))
	{
		// 报销申请路由
		requests := authed.Group("/requests")
		{
			requests.POST("", ctrl.Request.Create)
			requests.GET("", ctrl.Request.List)
			requests.GET("/:id", ctrl.Request.Get)
			requests.GET("/:id/history", ctrl.Request.History)
			requests.POST("/:id/review", ctrl.Request.Review)
			requests.POST("/:id/approve", ctrl.Request.Approve)
			requests.POST("/:id/reject", ctrl.Request.Reject)
			requests.POST("/:id/force-reject", ctrl.Request.ForceReject)
			requests.POST("/:id/cancel", ctrl.Request.Cancel)
			requests.POST("/:id/resubmit", ctrl.Request.Resubmit)
		}

		// 结算路由
		settlements := authed.Group("/settlements")
		{
			settlements.POST("", ctrl.Settlement.Consolidate)
			settlements.GET("", ctrl.Settlement.List)
			settlements.GET("/:id", ctrl.Settlement.Get)
		}

		// 项目路由
		projects := authed.Group("/projects")
		{
			projects.POST("", ctrl.Project.Create)
			projects.GET("", ctrl.Project.List)
			projects.GET("/:id", ctrl.Project.Get)
			projects.PUT("/:id/budget", ctrl.Project.UpdateBudget)
			projects.GET("/:id/budget-usage", ctrl.Project.BudgetUsage)
		}

		// 用户路由
		users := authed.Group("/users")
		{
			users.POST("", ctrl.User.Create)
			users.GET("/me", ctrl.User.Me)
			users.PUT("/:uid/profile", ctrl.User.UpdateProfile)
			users.PUT("/:uid/role", ctrl.User.UpdateRole)
		}
	}

	return router
}
