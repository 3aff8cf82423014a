package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trustspirit/reimburse-gin/internal/metrics"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/gorm"
)

// SettlementService 结算服务接口
type SettlementService interface {
	Consolidate(ctx context.Context, actor workflow.Actor, req *ConsolidateRequest) ([]*model.SettlementModel, error)
	Get(id string) (*model.SettlementModel, error)
	ListByProject(projectID string) ([]*model.SettlementModel, error)
}

// ConsolidateRequest 结算合并请求参数
// @Description 结算合并的请求参数,按财务操作员的选择顺序传入申请 ID
type ConsolidateRequest struct {
	ProjectID  string   `json:"projectId" example:"proj-001" binding:"required"`
	RequestIDs []string `json:"requestIds" binding:"required"`
}

// groupKey 结算分组键
// 五个字段任一不同即拆分为独立结算,防止跨委员会/届次混付,
// 也防止用户中途更新银行账号后新旧申请被合并
type groupKey struct {
	uid         string
	bankName    string
	bankAccount string
	committee   string
	session     string
}

type settlementService struct {
	db             *gorm.DB
	settlementRepo repository.SettlementRepository
	requestRepo    repository.RequestRepository
	historyRepo    repository.StateHistoryRepository
	userRepo       repository.UserRepository
	notifier       Notifier
	auditLogSvc    AuditLogService
	// batchLimit 单次结算事务允许的最大写操作数(N 个结算 + M 个申请状态翻转)
	batchLimit int
}

// NewSettlementService 创建结算服务
func NewSettlementService(
	db *gorm.DB,
	settlementRepo repository.SettlementRepository,
	requestRepo repository.RequestRepository,
	historyRepo repository.StateHistoryRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	auditLogSvc AuditLogService,
	batchLimit int,
) SettlementService {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &settlementService{
		db:             db,
		settlementRepo: settlementRepo,
		requestRepo:    requestRepo,
		historyRepo:    historyRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		auditLogSvc:    auditLogSvc,
		batchLimit:     batchLimit,
	}
}

// Consolidate 把一批已批准的申请按收款人分组合并为结算记录
//
// 全部校验通过之前零副作用;结算记录创建与成员申请的状态翻转
// 在同一个事务中完成,要么全部成功要么全部失败。
func (s *settlementService) Consolidate(ctx context.Context, actor workflow.Actor, req *ConsolidateRequest) ([]*model.SettlementModel, error) {
	if err := workflow.Authorize(actor, workflow.RequestView{}, workflow.ActionSettle, 0); err != nil {
		return nil, err
	}
	if len(req.RequestIDs) == 0 {
		return nil, workflow.NewValidationError("no requests selected")
	}

	requests, err := s.requestRepo.FindByIDs(req.RequestIDs)
	if err != nil {
		return nil, err
	}
	if len(requests) != len(req.RequestIDs) {
		return nil, workflow.NewValidationError("selection contains unknown request IDs")
	}

	// 前置校验: 整批校验全部通过才继续,任一失败整批中止
	for _, r := range requests {
		if r.ProjectID != req.ProjectID {
			return nil, workflow.NewValidationError("request %s does not belong to project %s", r.ID, req.ProjectID)
		}
		if r.Status != string(workflow.StatusApproved) {
			return nil, workflow.NewPreconditionError("request %s is %s, only approved requests can be settled", r.ID, r.Status)
		}
		if r.ApprovalSignature == "" || r.ApprovedBy == nil {
			return nil, workflow.NewPreconditionError("request of %s is missing approval signature", r.RequestedBy.Name)
		}
	}

	// 按选择顺序稳定分组
	groupOrder := make([]groupKey, 0)
	groups := make(map[groupKey][]*model.PaymentRequestModel)
	for _, r := range requests {
		key := groupKey{
			uid:         r.RequestedByUID,
			bankName:    r.BankName,
			bankAccount: r.BankAccount,
			committee:   r.Committee,
			session:     r.Session,
		}
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], r)
	}

	// 写操作数 = 结算记录数 + 申请状态翻转数,超出上限整批拒绝
	writeCount := len(groupOrder) + len(requests)
	if writeCount > s.batchLimit {
		return nil, workflow.NewPreconditionError(
			"batch requires %d writes, exceeds limit %d: too many requests selected, narrow your selection",
			writeCount, s.batchLimit)
	}

	now := time.Now()
	settlements := make([]*model.SettlementModel, 0, len(groupOrder))
	for _, key := range groupOrder {
		members := groups[key]
		first := members[0]

		var items []model.RequestItem
		var receipts []model.Receipt
		var requestIDs []string
		var sumOfTotals int64
		for _, m := range members {
			items = append(items, m.Items...)
			receipts = append(receipts, m.Receipts...)
			requestIDs = append(requestIDs, m.ID)
			sumOfTotals += m.TotalAmount
		}

		// 合计重算,并与成员申请合计交叉核对
		total := model.SumItems(items)
		if total != sumOfTotals {
			return nil, workflow.NewValidationError(
				"settlement total mismatch for %s: items sum %d, request totals %d",
				first.RequestedBy.Name, total, sumOfTotals)
		}

		// 申请人的默认签名(存在则附上,供对账单展示)
		requestedBySignature := ""
		if user, err := s.userRepo.FindByUID(first.RequestedByUID); err == nil {
			requestedBySignature = user.Signature
		}

		settlements = append(settlements, &model.SettlementModel{
			ID:                   uuid.New().String(),
			ProjectID:            req.ProjectID,
			RequestIDs:           requestIDs,
			Payee:                first.RequestedBy,
			Phone:                first.Phone,
			BankName:             first.BankName,
			BankAccount:          first.BankAccount,
			Session:              first.Session,
			Committee:            first.Committee,
			Items:                items,
			TotalAmount:          total,
			Receipts:             receipts,
			ApprovedBy:           first.ApprovedBy,
			ApprovalSignature:    first.ApprovalSignature,
			RequestedBySignature: requestedBySignature,
			CreatedBy:            actor.UID,
			CreatedAt:            now,
			UpdatedAt:            now,
		})
	}

	// 原子提交: 结算记录 + 成员状态翻转 + 状态历史,一损俱损
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		requestRepo := s.requestRepo.WithTx(tx)
		settlementRepo := s.settlementRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		for _, settlement := range settlements {
			if err := settlementRepo.Create(settlement); err != nil {
				return err
			}
			for _, requestID := range settlement.RequestIDs {
				member := findRequest(requests, requestID)
				if err := requestRepo.UpdateGuarded(requestID, string(workflow.StatusApproved), member.Version, map[string]interface{}{
					"settlement_id": settlement.ID,
					"updated_at":    now,
					"status":        string(workflow.StatusSettled),
				}); err != nil {
					return err
				}
				if err := historyRepo.Save(&model.StateHistoryModel{
					ID:         uuid.New().String(),
					RequestID:  requestID,
					FromStatus: string(workflow.StatusApproved),
					ToStatus:   string(workflow.StatusSettled),
					Operator:   actor.UID,
					CreatedAt:  now,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		if errors.Is(err, repository.ErrStaleRequest) {
			return nil, workflow.NewConflictError("a selected request was modified concurrently, settlement aborted")
		}
		return nil, err
	}

	for _, settlement := range settlements {
		metrics.RecordSettlementCreated(settlement.TotalAmount)
		s.notifier.SettlementCreated(settlement)
		if s.auditLogSvc != nil {
			_ = s.auditLogSvc.RecordAction(ctx, actor.UID, "settle", "settlement", settlement.ID, map[string]interface{}{
				"requestIds":  settlement.RequestIDs,
				"totalAmount": settlement.TotalAmount,
			})
		}
	}

	return settlements, nil
}

// findRequest 在已加载的申请列表中按 ID 查找
func findRequest(requests []*model.PaymentRequestModel, id string) *model.PaymentRequestModel {
	for _, r := range requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Get 获取结算详情
func (s *settlementService) Get(id string) (*model.SettlementModel, error) {
	settlement, err := s.settlementRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("settlement %s not found", id)
		}
		return nil, err
	}
	return settlement, nil
}

// ListByProject 查询项目下的结算列表
func (s *settlementService) ListByProject(projectID string) ([]*model.SettlementModel, error) {
	return s.settlementRepo.FindByProject(projectID)
}
