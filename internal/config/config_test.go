package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/config"
)

// TestDefault 测试默认配置
func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "reimburse", cfg.Database.DBName)
	assert.Equal(t, 24, cfg.JWT.TTLHours)

	// 审批与结算的核心默认值
	assert.Equal(t, int64(600000), cfg.Approval.DirectorThreshold)
	assert.Equal(t, 85, cfg.Approval.BudgetWarningThreshold)
	assert.Equal(t, 500, cfg.Approval.SettlementBatchLimit)
	assert.Empty(t, cfg.Approval.EncryptionKey)

	assert.Equal(t, "uploads", cfg.Storage.Dir)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

// TestLoad_ConfigFile 测试从配置文件加载
func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
server:
  port: 9090
approval:
  director_threshold: 800000
  settlement_batch_limit: 200
jwt:
  secret: test-secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, config.IsProduction(cfg))
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(800000), cfg.Approval.DirectorThreshold)
	assert.Equal(t, 200, cfg.Approval.SettlementBatchLimit)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)

	// 未覆盖的项保持默认值
	assert.Equal(t, 85, cfg.Approval.BudgetWarningThreshold)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

// TestLoad_MissingFile 测试配置文件不存在时报错
func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestIsProduction 测试环境判断
func TestIsProduction(t *testing.T) {
	assert.False(t, config.IsProduction(nil))
	assert.False(t, config.IsProduction(&config.Config{Env: "development"}))
	assert.True(t, config.IsProduction(&config.Config{Env: "production"}))
}
