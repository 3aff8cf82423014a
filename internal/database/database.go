package database

import (
	"context"
	"fmt"
	"time"

	"github.com/trustspirit/reimburse-gin/internal/config"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// DefaultPoolConfig 默认连接池配置
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库并配置连接池
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数,未配置的项使用默认值
	pool := DefaultPoolConfig()
	if cfg.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pool.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// ConnectWithRetry 带指数退避重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动建表
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		if err := db.AutoMigrate(
			&model.ProjectModel{},
			&model.AppUserModel{},
			&model.PaymentRequestModel{},
			&model.SettlementModel{},
			&model.StateHistoryModel{},
			&model.EventModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动建表(使用 TEXT 替代 jsonb)
func createSQLiteTables(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			budget_config TEXT,
			director_approval_threshold BIGINT NOT NULL DEFAULT 600000,
			budget_warning_threshold INTEGER NOT NULL DEFAULT 85,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS app_users (
			uid VARCHAR(64) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(128) NOT NULL,
			role VARCHAR(32) NOT NULL,
			bank_name VARCHAR(128),
			bank_account TEXT,
			phone VARCHAR(32),
			signature TEXT,
			project_ids TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create app_users table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payment_requests (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			committee VARCHAR(32) NOT NULL,
			session VARCHAR(64),
			status VARCHAR(32) NOT NULL,
			items TEXT NOT NULL,
			total_amount BIGINT NOT NULL,
			receipts TEXT,
			requested_by TEXT NOT NULL,
			requested_by_uid VARCHAR(64) NOT NULL,
			requester_role VARCHAR(32) NOT NULL,
			bank_name VARCHAR(128),
			bank_account VARCHAR(128),
			phone VARCHAR(32),
			reviewed_by TEXT,
			reviewed_at DATETIME,
			approved_by TEXT,
			approval_signature TEXT,
			approved_at DATETIME,
			rejection_reason TEXT,
			settlement_id VARCHAR(64),
			original_request_id VARCHAR(64),
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create payment_requests table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settlements (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			request_ids TEXT NOT NULL,
			payee TEXT NOT NULL,
			phone VARCHAR(32),
			bank_name VARCHAR(128),
			bank_account VARCHAR(128),
			session VARCHAR(64),
			committee VARCHAR(32) NOT NULL,
			items TEXT NOT NULL,
			total_amount BIGINT NOT NULL,
			receipts TEXT,
			approved_by TEXT,
			approval_signature TEXT,
			requested_by_signature TEXT,
			created_by VARCHAR(64),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create settlements table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS state_history (
			id VARCHAR(64) PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL,
			from_status VARCHAR(32),
			to_status VARCHAR(32) NOT NULL,
			reason TEXT,
			operator VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create state_history table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(64) PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL,
			type VARCHAR(32) NOT NULL,
			data TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			retry_count INTEGER DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			ip VARCHAR(45),
			user_agent TEXT,
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// payment_requests 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_project_status ON payment_requests(project_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_requests_project_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_requester ON payment_requests(requested_by_uid)").Error; err != nil {
		return fmt.Errorf("failed to create idx_requests_requester: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_settlement ON payment_requests(settlement_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_requests_settlement: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_updated_at ON payment_requests(updated_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_requests_updated_at: %w", err)
	}

	// settlements 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_settlements_project ON settlements(project_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_settlements_project: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_settlements_created_at ON settlements(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_settlements_created_at: %w", err)
	}

	// state_history 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_history_request_id ON state_history(request_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_history_request_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_history_created_at ON state_history(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_history_created_at: %w", err)
	}

	// events 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_status ON events(status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_events_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_request_id ON events(request_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_events_request_id: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_items_gin ON payment_requests USING GIN (items)").Error; err != nil {
			return fmt.Errorf("failed to create idx_requests_items_gin: %w", err)
		}
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_settlements_request_ids_gin ON settlements USING GIN (request_ids)").Error; err != nil {
			return fmt.Errorf("failed to create idx_settlements_request_ids_gin: %w", err)
		}
	}

	return nil
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
