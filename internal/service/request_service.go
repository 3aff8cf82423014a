package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trustspirit/reimburse-gin/internal/metrics"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/storage"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/gorm"
)

// RequestService 报销申请服务接口
// 所有操作都显式接收 actor,核心不依赖任何全局会话状态
type RequestService interface {
	Create(ctx context.Context, actor workflow.Actor, req *CreateRequestRequest) (*model.PaymentRequestModel, error)
	Get(id string) (*model.PaymentRequestModel, error)
	List(filter *repository.RequestFilter) ([]*model.PaymentRequestModel, error)
	History(id string) ([]*model.StateHistoryModel, error)
	Review(ctx context.Context, actor workflow.Actor, id string) error
	Approve(ctx context.Context, actor workflow.Actor, id string, req *ApproveRequest) error
	Reject(ctx context.Context, actor workflow.Actor, id string, req *RejectRequest) error
	ForceReject(ctx context.Context, actor workflow.Actor, id string, req *RejectRequest) error
	Cancel(ctx context.Context, actor workflow.Actor, id string) error
	Resubmit(ctx context.Context, actor workflow.Actor, id string, req *ResubmitRequest) (*model.PaymentRequestModel, error)
}

// ItemInput 报销明细输入
type ItemInput struct {
	Description string `json:"description" example:"场地租金"`
	BudgetCode  string `json:"budgetCode" example:"OPS-101" binding:"required"`
	Amount      int64  `json:"amount" example:"300000" binding:"required"`
}

// ReceiptInput 票据上传输入(base64 数据交给存储协作方,核心不解析内容)
type ReceiptInput struct {
	Name string `json:"name" example:"receipt-1.jpg" binding:"required"`
	Data string `json:"data" binding:"required"` // base64
}

// CreateRequestRequest 创建报销申请的请求参数
// @Description 创建报销申请的请求参数
type CreateRequestRequest struct {
	ProjectID   string         `json:"projectId" example:"proj-001" binding:"required"`
	Committee   string         `json:"committee" example:"operations" binding:"required"`
	Session     string         `json:"session" example:"2026-1"`
	Items       []ItemInput    `json:"items" binding:"required"`
	Receipts    []ReceiptInput `json:"receipts"`
	BankName    string         `json:"bankName" example:"국민은행"`
	BankAccount string         `json:"bankAccount"`
	Phone       string         `json:"phone"`
}

// ApproveRequest 批准请求参数
// @Description 批准报销申请的请求参数
type ApproveRequest struct {
	Signature string `json:"signature" binding:"required"` // 签名图片(base64)
}

// RejectRequest 驳回/强制驳回请求参数
// @Description 驳回报销申请的请求参数
type RejectRequest struct {
	Reason string `json:"reason" example:"발영수증 누락" binding:"required"`
}

// ResubmitRequest 重新提交请求参数
// @Description 重新提交被驳回/已撤回申请的请求参数,省略的字段沿用原申请
type ResubmitRequest struct {
	Items    []ItemInput    `json:"items"`
	Receipts []ReceiptInput `json:"receipts"`
}

type requestService struct {
	db          *gorm.DB
	requestRepo repository.RequestRepository
	historyRepo repository.StateHistoryRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	store       storage.Service
	cipher      *BankCipher
	notifier    Notifier
	auditLogSvc AuditLogService
	// defaultDirectorThreshold 项目未配置主管批准阈值时的回退值
	defaultDirectorThreshold int64
}

// NewRequestService 创建报销申请服务
func NewRequestService(
	db *gorm.DB,
	requestRepo repository.RequestRepository,
	historyRepo repository.StateHistoryRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	store storage.Service,
	cipher *BankCipher,
	notifier Notifier,
	auditLogSvc AuditLogService,
	defaultDirectorThreshold int64,
) RequestService {
	return &requestService{
		db:                       db,
		requestRepo:              requestRepo,
		historyRepo:              historyRepo,
		projectRepo:              projectRepo,
		userRepo:                 userRepo,
		store:                    store,
		cipher:                   cipher,
		notifier:                 notifier,
		auditLogSvc:              auditLogSvc,
		defaultDirectorThreshold: defaultDirectorThreshold,
	}
}

// validateItems 校验明细并返回服务端重算的合计金额
// 客户端提交的合计金额一律不信任,以重算值为准
func validateItems(items []ItemInput) ([]model.RequestItem, int64, error) {
	if len(items) == 0 {
		return nil, 0, workflow.NewValidationError("at least one item is required")
	}
	out := make([]model.RequestItem, 0, len(items))
	var total int64
	for i, item := range items {
		if item.Amount <= 0 {
			return nil, 0, workflow.NewValidationError("item %d: amount must be positive", i)
		}
		if item.BudgetCode == "" {
			return nil, 0, workflow.NewValidationError("item %d: budget code is required", i)
		}
		out = append(out, model.RequestItem{
			Description: item.Description,
			BudgetCode:  item.BudgetCode,
			Amount:      item.Amount,
		})
		total += item.Amount
	}
	return out, total, nil
}

// saveReceipts 保存票据附件,返回存储描述符
// 存储服务失败不阻断状态机之外的流程——但创建时票据是申请的一部分,失败即报错
func (s *requestService) saveReceipts(receipts []ReceiptInput) ([]model.Receipt, error) {
	out := make([]model.Receipt, 0, len(receipts))
	for _, rcpt := range receipts {
		saved, err := s.store.Save(rcpt.Name, rcpt.Data)
		if err != nil {
			return nil, workflow.NewValidationError("failed to store receipt %s: %v", rcpt.Name, err)
		}
		out = append(out, model.Receipt{
			Name:        saved.Name,
			StoragePath: saved.StoragePath,
			URL:         saved.URL,
		})
	}
	return out, nil
}

// Create 创建报销申请
func (s *requestService) Create(ctx context.Context, actor workflow.Actor, req *CreateRequestRequest) (*model.PaymentRequestModel, error) {
	committee, ok := workflow.ParseCommittee(req.Committee)
	if !ok {
		return nil, workflow.NewValidationError("unknown committee %q", req.Committee)
	}

	if _, err := s.projectRepo.FindByID(req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("project %s not found", req.ProjectID)
		}
		return nil, err
	}

	items, total, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}

	// 申请人档案: 角色快照与银行信息默认值
	user, err := s.userRepo.FindByUID(actor.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("requester %s not found", actor.UID)
		}
		return nil, err
	}
	if !user.MemberOf(req.ProjectID) {
		return nil, workflow.NewUnauthorizedError("user %s is not a member of project %s", actor.UID, req.ProjectID)
	}

	receipts, err := s.saveReceipts(req.Receipts)
	if err != nil {
		return nil, err
	}

	bankName := req.BankName
	bankAccount := req.BankAccount
	phone := req.Phone
	if bankName == "" {
		bankName = user.BankName
	}
	if bankAccount == "" {
		// 档案中的账号是加密存储的,落入申请前还原明文
		bankAccount = s.cipher.Decrypt(user.BankAccount)
	}
	if phone == "" {
		phone = user.Phone
	}

	now := time.Now()
	request := &model.PaymentRequestModel{
		ID:             uuid.New().String(),
		ProjectID:      req.ProjectID,
		Committee:      string(committee),
		Session:        req.Session,
		Status:         string(workflow.StatusPending),
		Items:          items,
		TotalAmount:    total,
		Receipts:       receipts,
		RequestedBy:    model.Actor{UID: user.UID, Name: user.Name, Email: user.Email},
		RequestedByUID: user.UID,
		RequesterRole:  user.Role,
		BankName:       bankName,
		BankAccount:    bankAccount,
		Phone:          phone,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.WithTx(tx).Create(request); err != nil {
			return err
		}
		return s.historyRepo.WithTx(tx).Save(&model.StateHistoryModel{
			ID:        uuid.New().String(),
			RequestID: request.ID,
			ToStatus:  request.Status,
			Operator:  actor.UID,
			CreatedAt: now,
		})
	}); err != nil {
		return nil, err
	}

	metrics.RecordRequestCreated()
	s.notifier.RequestChanged(model.EventRequestCreated, request, "", request.Status)
	s.audit(ctx, actor.UID, "create", request.ID, map[string]interface{}{
		"projectId":   request.ProjectID,
		"committee":   request.Committee,
		"totalAmount": request.TotalAmount,
	})

	return request, nil
}

// Get 获取申请详情
func (s *requestService) Get(id string) (*model.PaymentRequestModel, error) {
	req, err := s.requestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("request %s not found", id)
		}
		return nil, err
	}
	return req, nil
}

// List 按过滤器查询申请列表
func (s *requestService) List(filter *repository.RequestFilter) ([]*model.PaymentRequestModel, error) {
	return s.requestRepo.FindByFilter(filter)
}

// History 查询申请状态历史
func (s *requestService) History(id string) ([]*model.StateHistoryModel, error) {
	return s.historyRepo.FindByRequestID(id)
}

// directorThreshold 解析申请所属项目的主管批准阈值
func (s *requestService) directorThreshold(projectID string) int64 {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil || project.DirectorApprovalThreshold <= 0 {
		return s.defaultDirectorThreshold
	}
	return project.DirectorApprovalThreshold
}

// requesterRole 在计算批准人池的时刻解析申请人的当前角色
// 申请人可能在提交后被提升为主管,此时批准权必须收敛,因此不使用创建时快照
func (s *requestService) requesterRole(req *model.PaymentRequestModel) workflow.Role {
	user, err := s.userRepo.FindByUID(req.RequestedByUID)
	if err != nil {
		return workflow.Role(req.RequesterRole)
	}
	return workflow.Role(user.Role)
}

// transition 应用单次状态转换
//
// 读取当前持久化状态 → 权限校验 → 状态机校验 → 带状态与版本守卫的条件更新。
// 守卫未命中说明输掉了并发竞争,重读当前状态并返回冲突错误,绝不二次应用。
func (s *requestService) transition(
	ctx context.Context,
	actor workflow.Actor,
	id string,
	action workflow.Action,
	updates map[string]interface{},
	reason string,
) (*model.PaymentRequestModel, error) {
	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	view := workflow.RequestView{
		RequesterUID:  req.RequestedByUID,
		RequesterRole: s.requesterRole(req),
		Committee:     workflow.Committee(req.Committee),
		Status:        workflow.Status(req.Status),
		TotalAmount:   req.TotalAmount,
	}
	if err := workflow.Authorize(actor, view, action, s.directorThreshold(req.ProjectID)); err != nil {
		return nil, err
	}

	next, err := workflow.NextStatus(workflow.Status(req.Status), action)
	if err != nil {
		return nil, err
	}

	oldStatus := req.Status
	updates["status"] = string(next)
	updates["updated_at"] = time.Now()

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.WithTx(tx).UpdateGuarded(id, oldStatus, req.Version, updates); err != nil {
			return err
		}
		return s.historyRepo.WithTx(tx).Save(&model.StateHistoryModel{
			ID:         uuid.New().String(),
			RequestID:  id,
			FromStatus: oldStatus,
			ToStatus:   string(next),
			Reason:     reason,
			Operator:   actor.UID,
			CreatedAt:  time.Now(),
		})
	}); err != nil {
		if errors.Is(err, repository.ErrStaleRequest) {
			current, _ := s.requestRepo.FindByID(id)
			if current != nil {
				return nil, workflow.NewConflictError("request already handled, current status is %s", current.Status)
			}
			return nil, workflow.NewConflictError("request already handled")
		}
		return nil, err
	}

	req.Status = string(next)
	req.Version++
	metrics.RecordTransition(string(action))
	return req, nil
}

// Review 审核申请 (pending → reviewed)
func (s *requestService) Review(ctx context.Context, actor workflow.Actor, id string) error {
	now := time.Now()
	reviewer, err := json.Marshal(model.Actor{UID: actor.UID, Name: actor.Name})
	if err != nil {
		return err
	}

	req, err := s.transition(ctx, actor, id, workflow.ActionReview, map[string]interface{}{
		"reviewed_by": string(reviewer),
		"reviewed_at": now,
	}, "")
	if err != nil {
		return err
	}

	s.notifier.RequestChanged(model.EventRequestReviewed, req, string(workflow.StatusPending), req.Status)
	s.audit(ctx, actor.UID, "review", id, nil)
	return nil
}

// Approve 批准申请 (reviewed → approved)
// 签名是批准的必要条件,金额阈值与主管申请收敛规则在权限校验中强制
func (s *requestService) Approve(ctx context.Context, actor workflow.Actor, id string, req *ApproveRequest) error {
	if req == nil || req.Signature == "" {
		return workflow.NewValidationError("approval signature is required")
	}

	now := time.Now()
	approver, err := json.Marshal(model.Actor{UID: actor.UID, Name: actor.Name})
	if err != nil {
		return err
	}

	updated, err := s.transition(ctx, actor, id, workflow.ActionApprove, map[string]interface{}{
		"approved_by":        string(approver),
		"approval_signature": req.Signature,
		"approved_at":        now,
	}, "")
	if err != nil {
		return err
	}

	s.notifier.RequestChanged(model.EventRequestApproved, updated, string(workflow.StatusReviewed), updated.Status)
	s.audit(ctx, actor.UID, "approve", id, nil)
	return nil
}

// Reject 驳回申请 (pending|reviewed → rejected)
// approved_by 复用为"最后动作人"记录驳回人;批准签名保持为空
func (s *requestService) Reject(ctx context.Context, actor workflow.Actor, id string, req *RejectRequest) error {
	if req == nil || req.Reason == "" {
		return workflow.NewValidationError("rejection reason is required")
	}

	now := time.Now()
	rejecter, err := json.Marshal(model.Actor{UID: actor.UID, Name: actor.Name})
	if err != nil {
		return err
	}

	current, err := s.Get(id)
	if err != nil {
		return err
	}
	oldStatus := current.Status

	updated, err := s.transition(ctx, actor, id, workflow.ActionReject, map[string]interface{}{
		"approved_by":        string(rejecter),
		"approval_signature": "",
		"approved_at":        now,
		"rejection_reason":   req.Reason,
	}, req.Reason)
	if err != nil {
		return err
	}

	s.notifier.RequestChanged(model.EventRequestRejected, updated, oldStatus, updated.Status)
	s.audit(ctx, actor.UID, "reject", id, map[string]interface{}{"reason": req.Reason})
	return nil
}

// ForceReject 强制驳回已批准的申请 (approved → force_rejected)
// 结算永远不会消费非 approved 状态的申请,本操作是结算前撤销批准的安全阀
func (s *requestService) ForceReject(ctx context.Context, actor workflow.Actor, id string, req *RejectRequest) error {
	if req == nil || req.Reason == "" {
		return workflow.NewValidationError("force-reject reason is required")
	}

	now := time.Now()
	rejecter, err := json.Marshal(model.Actor{UID: actor.UID, Name: actor.Name})
	if err != nil {
		return err
	}

	updated, err := s.transition(ctx, actor, id, workflow.ActionForceReject, map[string]interface{}{
		"approved_by":        string(rejecter),
		"approval_signature": "",
		"approved_at":        now,
		"rejection_reason":   req.Reason,
	}, req.Reason)
	if err != nil {
		return err
	}

	s.notifier.RequestChanged(model.EventRequestForceRejected, updated, string(workflow.StatusApproved), updated.Status)
	s.audit(ctx, actor.UID, "force_reject", id, map[string]interface{}{"reason": req.Reason})
	return nil
}

// Cancel 撤回申请 (pending → cancelled),仅限申请人本人,无需理由
func (s *requestService) Cancel(ctx context.Context, actor workflow.Actor, id string) error {
	updated, err := s.transition(ctx, actor, id, workflow.ActionCancel, map[string]interface{}{}, "")
	if err != nil {
		return err
	}

	s.notifier.RequestChanged(model.EventRequestCancelled, updated, string(workflow.StatusPending), updated.Status)
	s.audit(ctx, actor.UID, "cancel", id, nil)
	return nil
}

// Resubmit 重新提交被驳回/已撤回/被强制驳回的申请
//
// 原记录永不改写: 重新提交生成全新申请并通过 originalRequestId 回链,
// 历史形成链而非环。仅原申请人可重新提交。
func (s *requestService) Resubmit(ctx context.Context, actor workflow.Actor, id string, req *ResubmitRequest) (*model.PaymentRequestModel, error) {
	original, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if actor.UID != original.RequestedByUID {
		return nil, workflow.NewUnauthorizedError("only the original requester can resubmit")
	}
	if !workflow.Status(original.Status).IsResubmittable() {
		return nil, workflow.NewConflictError("request is %s, cannot resubmit", original.Status)
	}

	items := original.Items
	total := original.TotalAmount
	if req != nil && len(req.Items) > 0 {
		items, total, err = validateItems(req.Items)
		if err != nil {
			return nil, err
		}
	}

	receipts := original.Receipts
	if req != nil && len(req.Receipts) > 0 {
		receipts, err = s.saveReceipts(req.Receipts)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	resubmitted := &model.PaymentRequestModel{
		ID:                uuid.New().String(),
		ProjectID:         original.ProjectID,
		Committee:         original.Committee,
		Session:           original.Session,
		Status:            string(workflow.StatusPending),
		Items:             items,
		TotalAmount:       total,
		Receipts:          receipts,
		RequestedBy:       original.RequestedBy,
		RequestedByUID:    original.RequestedByUID,
		RequesterRole:     original.RequesterRole,
		BankName:          original.BankName,
		BankAccount:       original.BankAccount,
		Phone:             original.Phone,
		OriginalRequestID: original.ID,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.WithTx(tx).Create(resubmitted); err != nil {
			return err
		}
		return s.historyRepo.WithTx(tx).Save(&model.StateHistoryModel{
			ID:        uuid.New().String(),
			RequestID: resubmitted.ID,
			ToStatus:  resubmitted.Status,
			Reason:    fmt.Sprintf("resubmission of %s", original.ID),
			Operator:  actor.UID,
			CreatedAt: now,
		})
	}); err != nil {
		return nil, err
	}

	metrics.RecordRequestCreated()
	s.notifier.RequestChanged(model.EventRequestResubmitted, resubmitted, original.Status, resubmitted.Status)
	s.audit(ctx, actor.UID, "resubmit", resubmitted.ID, map[string]interface{}{"originalRequestId": original.ID})

	return resubmitted, nil
}

// audit 记录审计日志,失败不影响主流程
func (s *requestService) audit(ctx context.Context, userID string, action string, resourceID string, details interface{}) {
	if s.auditLogSvc == nil {
		return
	}
	_ = s.auditLogSvc.RecordAction(ctx, userID, action, "request", resourceID, details)
}
