package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trustspirit/reimburse-gin/internal/database"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/service"
	"github.com/trustspirit/reimburse-gin/internal/storage"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv 服务层测试环境: 内存数据库 + 全部仓储与服务
type testEnv struct {
	db             *gorm.DB
	requestRepo    repository.RequestRepository
	historyRepo    repository.StateHistoryRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	settlementRepo repository.SettlementRepository
	requestSvc     service.RequestService
	settlementSvc  service.SettlementService
	budgetSvc      service.BudgetService
}

// newTestEnv 构建服务层测试环境
// settlementBatchLimit <= 0 时使用默认批次上限
func newTestEnv(t *testing.T, settlementBatchLimit int) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	requestRepo := repository.NewRequestRepository(db)
	historyRepo := repository.NewStateHistoryRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)

	store, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	cipher := service.NewBankCipher("")
	notifier := service.NopNotifier{}

	requestSvc := service.NewRequestService(
		db, requestRepo, historyRepo, projectRepo, userRepo,
		store, cipher, notifier, nil, 600000,
	)
	settlementSvc := service.NewSettlementService(
		db, settlementRepo, requestRepo, historyRepo, userRepo,
		notifier, nil, settlementBatchLimit,
	)
	budgetSvc := service.NewBudgetService(projectRepo, requestRepo)

	return &testEnv{
		db:             db,
		requestRepo:    requestRepo,
		historyRepo:    historyRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		settlementRepo: settlementRepo,
		requestSvc:     requestSvc,
		settlementSvc:  settlementSvc,
		budgetSvc:      budgetSvc,
	}
}

// seedProject 写入测试项目
func (e *testEnv) seedProject(t *testing.T, id string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.projectRepo.Save(&model.ProjectModel{
		ID:                        id,
		Name:                      "2026년 1분기 행사",
		BudgetConfig:              model.BudgetConfig{TotalBudget: 1000000},
		DirectorApprovalThreshold: 600000,
		BudgetWarningThreshold:    85,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}))
}

// seedUser 写入测试用户并返回对应的 actor
func (e *testEnv) seedUser(t *testing.T, uid string, role workflow.Role, projectIDs ...string) workflow.Actor {
	t.Helper()
	now := time.Now()
	require.NoError(t, e.userRepo.Save(&model.AppUserModel{
		UID:          uid,
		Name:         "user " + uid,
		Email:        uid + "@example.com",
		PasswordHash: "x",
		Role:         string(role),
		BankName:     "국민은행",
		BankAccount:  "110-" + uid,
		Phone:        "010-0000-0000",
		Signature:    "sig-" + uid,
		ProjectIDs:   projectIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
	return workflow.Actor{UID: uid, Name: "user " + uid, Role: role}
}

// seedApprovedRequest 直接写入一条已批准的申请(结算测试用)
func (e *testEnv) seedApprovedRequest(t *testing.T, id string, uid string, bankAccount string, amount int64) *model.PaymentRequestModel {
	t.Helper()
	now := time.Now()
	approvedAt := now
	req := &model.PaymentRequestModel{
		ID:             id,
		ProjectID:      "proj-001",
		Committee:      "operations",
		Session:        "2026-1",
		Status:         string(workflow.StatusApproved),
		Items:          []model.RequestItem{{Description: "비품 구입", BudgetCode: "OPS-101", Amount: amount}},
		TotalAmount:    amount,
		RequestedBy:    model.Actor{UID: uid, Name: "user " + uid},
		RequestedByUID: uid,
		RequesterRole:  string(workflow.RoleMember),
		BankName:       "국민은행",
		BankAccount:    bankAccount,
		Phone:          "010-0000-0000",
		ApprovedBy:     &model.Actor{UID: "app-001", Name: "user app-001"},
		ApprovalSignature: "data:image/png;base64,sig",
		ApprovedAt:     &approvedAt,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, e.requestRepo.Create(req))
	return req
}
