package container

import (
	"fmt"
	"time"

	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/config"
	"github.com/trustspirit/reimburse-gin/internal/database"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/service"
	"github.com/trustspirit/reimburse-gin/internal/storage"
	"github.com/trustspirit/reimburse-gin/internal/websocket"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、仓储、服务、通知组件
type Container struct {
	db           *gorm.DB
	hub          *websocket.Hub
	tokenManager *auth.TokenManager

	requestSvc    service.RequestService
	settlementSvc service.SettlementService
	budgetSvc     service.BudgetService
	projectSvc    service.ProjectService
	userSvc       service.UserService
	auditLogSvc   service.AuditLogService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化令牌管理器
	tokenManager, err := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	// 3. 初始化 WebSocket Hub 与事件通知
	hub := websocket.NewHub()
	go hub.Run()

	// 4. 仓储层
	requestRepo := repository.NewRequestRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewStateHistoryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// 5. 票据存储与通知组件
	store, err := storage.NewLocalStorage(cfg.Storage.Dir, "")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	notifier := service.NewNotifier(eventRepo, hub)
	cipher := service.NewBankCipher(cfg.Approval.EncryptionKey)

	// 6. 服务层
	auditLogSvc := service.NewAuditLogService(auditRepo)
	requestSvc := service.NewRequestService(
		db, requestRepo, historyRepo, projectRepo, userRepo,
		store, cipher, notifier, auditLogSvc,
		cfg.Approval.DirectorThreshold,
	)
	settlementSvc := service.NewSettlementService(
		db, settlementRepo, requestRepo, historyRepo, userRepo,
		notifier, auditLogSvc,
		cfg.Approval.SettlementBatchLimit,
	)
	budgetSvc := service.NewBudgetService(projectRepo, requestRepo)
	projectSvc := service.NewProjectService(projectRepo, auditLogSvc,
		cfg.Approval.DirectorThreshold, cfg.Approval.BudgetWarningThreshold)
	userSvc := service.NewUserService(userRepo, cipher, auditLogSvc)

	return &Container{
		db:            db,
		hub:           hub,
		tokenManager:  tokenManager,
		requestSvc:    requestSvc,
		settlementSvc: settlementSvc,
		budgetSvc:     budgetSvc,
		projectSvc:    projectSvc,
		userSvc:       userSvc,
		auditLogSvc:   auditLogSvc,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// TokenManager 获取令牌管理器
func (c *Container) TokenManager() *auth.TokenManager {
	return c.tokenManager
}

// RequestService 获取报销申请服务
func (c *Container) RequestService() service.RequestService {
	return c.requestSvc
}

// SettlementService 获取结算服务
func (c *Container) SettlementService() service.SettlementService {
	return c.settlementSvc
}

// BudgetService 获取预算服务
func (c *Container) BudgetService() service.BudgetService {
	return c.budgetSvc
}

// ProjectService 获取项目服务
func (c *Container) ProjectService() service.ProjectService {
	return c.projectSvc
}

// UserService 获取用户服务
func (c *Container) UserService() service.UserService {
	return c.userSvc
}

// AuditLogService 获取审计日志服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogSvc
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
