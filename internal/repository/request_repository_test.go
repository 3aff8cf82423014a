package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/database"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建内存测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = database.Migrate(db)
	require.NoError(t, err)

	return db
}

// newRequest 构造测试用申请记录
func newRequest(id string, status string) *model.PaymentRequestModel {
	now := time.Now()
	return &model.PaymentRequestModel{
		ID:             id,
		ProjectID:      "proj-001",
		Committee:      "operations",
		Session:        "2026-1",
		Status:         status,
		Items:          []model.RequestItem{{Description: "비품", BudgetCode: "OPS-101", Amount: 100000}},
		TotalAmount:    100000,
		RequestedBy:    model.Actor{UID: "user-001", Name: "홍길동"},
		RequestedByUID: "user-001",
		RequesterRole:  "member",
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TestRequestRepository_CreateAndFind 测试创建与查找申请
func TestRequestRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	req := newRequest("req-001", "pending")
	require.NoError(t, repo.Create(req))

	found, err := repo.FindByID("req-001")
	require.NoError(t, err)
	assert.Equal(t, "req-001", found.ID)
	assert.Equal(t, "pending", found.Status)
	assert.Equal(t, int64(100000), found.TotalAmount)
	assert.Equal(t, 1, found.Version)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "OPS-101", found.Items[0].BudgetCode)

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// TestRequestRepository_FindByIDs_PreservesOrder 测试批量查找保持入参顺序
// 结算分组依赖操作员的选择顺序,数据库 IN 查询不保证顺序
func TestRequestRepository_FindByIDs_PreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	for _, id := range []string{"req-a", "req-b", "req-c"} {
		require.NoError(t, repo.Create(newRequest(id, "approved")))
	}

	found, err := repo.FindByIDs([]string{"req-c", "req-a", "req-b"})
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "req-c", found[0].ID)
	assert.Equal(t, "req-a", found[1].ID)
	assert.Equal(t, "req-b", found[2].ID)

	// 未知 ID 被静默跳过,由调用方比对数量
	found, err = repo.FindByIDs([]string{"req-a", "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

// TestRequestRepository_UpdateGuarded 测试带守卫的条件更新
func TestRequestRepository_UpdateGuarded(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	require.NoError(t, repo.Create(newRequest("req-001", "pending")))

	err := repo.UpdateGuarded("req-001", "pending", 1, map[string]interface{}{
		"status":     "reviewed",
		"updated_at": time.Now(),
	})
	require.NoError(t, err)

	found, err := repo.FindByID("req-001")
	require.NoError(t, err)
	assert.Equal(t, "reviewed", found.Status)
	assert.Equal(t, 2, found.Version)
}

// TestRequestRepository_UpdateGuarded_Stale 测试守卫未命中时返回冲突
func TestRequestRepository_UpdateGuarded_Stale(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	require.NoError(t, repo.Create(newRequest("req-001", "pending")))

	// 状态不匹配
	err := repo.UpdateGuarded("req-001", "reviewed", 1, map[string]interface{}{"status": "approved"})
	assert.ErrorIs(t, err, repository.ErrStaleRequest)

	// 版本不匹配
	err = repo.UpdateGuarded("req-001", "pending", 99, map[string]interface{}{"status": "reviewed"})
	assert.ErrorIs(t, err, repository.ErrStaleRequest)

	// 两个并发操作只有一个能命中行
	err = repo.UpdateGuarded("req-001", "pending", 1, map[string]interface{}{"status": "reviewed"})
	require.NoError(t, err)
	err = repo.UpdateGuarded("req-001", "pending", 1, map[string]interface{}{"status": "rejected"})
	assert.ErrorIs(t, err, repository.ErrStaleRequest)

	// 竞争失败绝不静默覆盖
	found, err := repo.FindByID("req-001")
	require.NoError(t, err)
	assert.Equal(t, "reviewed", found.Status)
}

// TestRequestRepository_FindByFilter 测试过滤器查询
func TestRequestRepository_FindByFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	pending := newRequest("req-001", "pending")
	approved := newRequest("req-002", "approved")
	other := newRequest("req-003", "pending")
	other.ProjectID = "proj-002"
	other.RequestedByUID = "user-002"
	for _, req := range []*model.PaymentRequestModel{pending, approved, other} {
		require.NoError(t, repo.Create(req))
	}

	project := "proj-001"
	status := "pending"
	found, err := repo.FindByFilter(&repository.RequestFilter{ProjectID: &project, Status: &status})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "req-001", found[0].ID)

	requester := "user-002"
	found, err = repo.FindByFilter(&repository.RequestFilter{RequestedBy: &requester})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "req-003", found[0].ID)

	// nil 过滤器返回全部
	found, err = repo.FindByFilter(nil)
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

// TestRequestRepository_FindByFilter_Sort 测试排序字段白名单清洗
func TestRequestRepository_FindByFilter_Sort(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	small := newRequest("req-001", "pending")
	small.TotalAmount = 100
	big := newRequest("req-002", "pending")
	big.TotalAmount = 900
	require.NoError(t, repo.Create(small))
	require.NoError(t, repo.Create(big))

	found, err := repo.FindByFilter(&repository.RequestFilter{SortBy: "total_amount", SortOrder: "ASC"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "req-001", found[0].ID)

	// 白名单之外的排序字段回退到默认排序,不允许注入
	found, err = repo.FindByFilter(&repository.RequestFilter{SortBy: "total_amount; DROP TABLE payment_requests"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

// TestRequestRepository_FindByProjectStatuses 测试按状态集合查询(预算计算用)
func TestRequestRepository_FindByProjectStatuses(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRequestRepository(db)

	for i, status := range []string{"pending", "reviewed", "approved", "settled", "rejected"} {
		req := newRequest("req-00"+string(rune(i+'1')), status)
		require.NoError(t, repo.Create(req))
	}

	found, err := repo.FindByProjectStatuses("proj-001", []string{"reviewed", "approved", "settled"})
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

// TestStateHistoryRepository 测试状态历史的保存与按申请查询
func TestStateHistoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewStateHistoryRepository(db)

	transitions := []struct {
		from string
		to   string
	}{
		{"", "pending"},
		{"pending", "reviewed"},
		{"reviewed", "approved"},
	}
	for i, tr := range transitions {
		err := repo.Save(&model.StateHistoryModel{
			ID:         "hist-00" + string(rune(i+'1')),
			RequestID:  "req-001",
			FromStatus: tr.from,
			ToStatus:   tr.to,
			Operator:   "user-001",
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	histories, err := repo.FindByRequestID("req-001")
	require.NoError(t, err)
	require.Len(t, histories, 3)
	assert.Equal(t, "pending", histories[0].ToStatus)
	assert.Equal(t, "approved", histories[2].ToStatus)
}
