package repository

import (
	"errors"

	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/utils"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/gorm"
)

// ErrStaleRequest 条件更新未命中任何行,说明状态或版本已被他人改写
var ErrStaleRequest = errors.New("request status or version changed")

// RequestRepository 报销申请仓储接口
type RequestRepository interface {
	Create(req *model.PaymentRequestModel) error
	FindByID(id string) (*model.PaymentRequestModel, error)
	FindByIDs(ids []string) ([]*model.PaymentRequestModel, error)
	FindByFilter(filter *RequestFilter) ([]*model.PaymentRequestModel, error)
	FindByProjectStatuses(projectID string, statuses []string) ([]*model.PaymentRequestModel, error)
	// UpdateGuarded 对申请做带前置状态与版本号守卫的条件更新
	// 未命中任何行时返回 ErrStaleRequest,调用方据此区分冲突与授权失败
	UpdateGuarded(id string, expectedStatus string, expectedVersion int, updates map[string]interface{}) error
	// WithTx 返回使用指定事务句柄的仓储,用于结算批量原子写
	WithTx(tx *gorm.DB) RequestRepository
}

// RequestFilter 申请查询过滤器
type RequestFilter struct {
	ProjectID    *string
	Status       *string
	Committee    *string
	RequestedBy  *string
	SettlementID *string
	StartTime    *string
	EndTime      *string
	SortBy       string // 排序字段,经白名单清洗后拼入 ORDER BY
	SortOrder    string // ASC 或 DESC,默认 DESC
}

// requestRepository 报销申请仓储实现
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建报销申请仓储
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// WithTx 返回绑定事务的仓储
func (r *requestRepository) WithTx(tx *gorm.DB) RequestRepository {
	return &requestRepository{db: tx}
}

// Create 创建申请(仅创建,不用于状态更新)
func (r *requestRepository) Create(req *model.PaymentRequestModel) error {
	return r.db.Create(req).Error
}

// FindByID 根据 ID 查找申请
func (r *requestRepository) FindByID(id string) (*model.PaymentRequestModel, error) {
	var req model.PaymentRequestModel
	if err := r.db.Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDs 根据 ID 列表查找申请,保持入参顺序返回
func (r *requestRepository) FindByIDs(ids []string) ([]*model.PaymentRequestModel, error) {
	var reqs []*model.PaymentRequestModel
	if err := r.db.Where("id IN ?", ids).Find(&reqs).Error; err != nil {
		return nil, err
	}

	// 结算分组依赖操作员的选择顺序,数据库 IN 查询不保证顺序
	byID := make(map[string]*model.PaymentRequestModel, len(reqs))
	for _, req := range reqs {
		byID[req.ID] = req
	}
	ordered := make([]*model.PaymentRequestModel, 0, len(ids))
	for _, id := range ids {
		if req, ok := byID[id]; ok {
			ordered = append(ordered, req)
		}
	}
	return ordered, nil
}

// FindByFilter 根据过滤器查找申请
func (r *requestRepository) FindByFilter(filter *RequestFilter) ([]*model.PaymentRequestModel, error) {
	var reqs []*model.PaymentRequestModel
	query := r.db.Model(&model.PaymentRequestModel{})

	if filter != nil {
		if filter.ProjectID != nil {
			query = query.Where("project_id = ?", *filter.ProjectID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Committee != nil {
			query = query.Where("committee = ?", *filter.Committee)
		}
		if filter.RequestedBy != nil {
			query = query.Where("requested_by_uid = ?", *filter.RequestedBy)
		}
		if filter.SettlementID != nil {
			query = query.Where("settlement_id = ?", *filter.SettlementID)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	sortBy := "created_at"
	sortOrder := "DESC"
	if filter != nil && filter.SortBy != "" {
		// 排序字段拼接 SQL,必须先做注入清洗
		if err := utils.ValidateSortField(filter.SortBy); err == nil {
			sortBy = utils.SanitizeSortField(filter.SortBy)
		}
		sortOrder = utils.SanitizeSortOrder(filter.SortOrder)
	}

	err := query.Order(sortBy + " " + sortOrder).Find(&reqs).Error
	return reqs, err
}

// FindByProjectStatuses 查找项目内处于指定状态集合的申请(预算计算用)
func (r *requestRepository) FindByProjectStatuses(projectID string, statuses []string) ([]*model.PaymentRequestModel, error) {
	var reqs []*model.PaymentRequestModel
	err := r.db.Where("project_id = ? AND status IN ?", projectID, statuses).Find(&reqs).Error
	return reqs, err
}

// UpdateGuarded 带守卫的条件更新(乐观并发控制)
//
// UPDATE ... WHERE id = ? AND status = ? AND version = ? 保证两个并发操作
// 只有一个能命中行;未命中即为竞争失败,绝不静默覆盖。
func (r *requestRepository) UpdateGuarded(id string, expectedStatus string, expectedVersion int, updates map[string]interface{}) error {
	updates["version"] = expectedVersion + 1

	result := r.db.Model(&model.PaymentRequestModel{}).
		Where("id = ? AND status = ? AND version = ?", id, expectedStatus, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleRequest
	}
	return nil
}

// BudgetRequests 将申请列表转换为预算计算快照
func BudgetRequests(reqs []*model.PaymentRequestModel) []workflow.BudgetRequest {
	out := make([]workflow.BudgetRequest, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, workflow.BudgetRequest{
			Status:      workflow.Status(req.Status),
			TotalAmount: req.TotalAmount,
		})
	}
	return out
}
