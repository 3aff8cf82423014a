package model

import (
	"errors"
	"time"

	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// Actor 动作执行人快照(申请人/审核人/批准人)
type Actor struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RequestItem 报销明细条目
type RequestItem struct {
	Description string `json:"description"`
	BudgetCode  string `json:"budgetCode"`
	Amount      int64  `json:"amount"`
}

// Receipt 票据附件描述符,由文件存储服务返回,核心不关心其内容
type Receipt struct {
	Name        string `json:"name"`
	StoragePath string `json:"storagePath"`
	URL         string `json:"url"`
}

// PaymentRequestModel 报销申请数据模型
type PaymentRequestModel struct {
	ID                string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID         string          `gorm:"type:varchar(64);not null;index" json:"projectId"`
	Committee         string          `gorm:"type:varchar(32);not null;index" json:"committee"`
	Session           string          `gorm:"type:varchar(64);index" json:"session"` // 届次/期次
	Status            string          `gorm:"type:varchar(32);not null;index" json:"status"`
	Items             []RequestItem   `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	TotalAmount       int64           `gorm:"type:bigint;not null" json:"totalAmount"` // 恒等于明细金额之和
	Receipts          []Receipt       `gorm:"type:jsonb;serializer:json" json:"receipts"`
	RequestedBy       Actor           `gorm:"type:jsonb;serializer:json;not null" json:"requestedBy"` // 创建时固定,不可变
	RequestedByUID    string          `gorm:"type:varchar(64);not null;index" json:"-"`               // 冗余列,用于结算分组查询
	RequesterRole     string          `gorm:"type:varchar(32);not null" json:"-"`                     // 创建时解析的申请人角色
	BankName          string          `gorm:"type:varchar(128)" json:"bankName"`
	BankAccount       string          `gorm:"type:varchar(128)" json:"bankAccount"`
	Phone             string          `gorm:"type:varchar(32)" json:"phone"`
	ReviewedBy        *Actor          `gorm:"type:jsonb;serializer:json" json:"reviewedBy"`
	ReviewedAt        *time.Time      `json:"reviewedAt"`
	ApprovedBy        *Actor          `gorm:"type:jsonb;serializer:json" json:"approvedBy"` // 驳回时记录驳回人
	ApprovalSignature string          `gorm:"type:text" json:"approvalSignature"`           // 仅批准时写入
	ApprovedAt        *time.Time      `json:"approvedAt"`
	RejectionReason   string          `gorm:"type:text" json:"rejectionReason"` // rejected/force_rejected 时必填
	SettlementID      string          `gorm:"type:varchar(64);index" json:"settlementId"`
	OriginalRequestID string          `gorm:"type:varchar(64);index" json:"originalRequestId"` // 重新提交时回链原申请
	Version           int             `gorm:"type:int;not null;default:1" json:"-"`            // 乐观并发版本号
	CreatedAt         time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updatedAt"`
}

// TableName 指定表名
func (PaymentRequestModel) TableName() string {
	return "payment_requests"
}

// Validate 验证申请模型
func (pr *PaymentRequestModel) Validate() error {
	if pr.ID == "" {
		return errors.New("request ID is required")
	}
	if pr.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if !workflow.Status(pr.Status).IsValid() {
		return errors.New("invalid request status")
	}
	if _, ok := workflow.ParseCommittee(pr.Committee); !ok {
		return errors.New("invalid committee")
	}
	if len(pr.Items) == 0 {
		return errors.New("at least one item is required")
	}
	if pr.RequestedBy.UID == "" {
		return errors.New("requestedBy is required")
	}
	var sum int64
	for _, item := range pr.Items {
		if item.Amount <= 0 {
			return errors.New("item amount must be positive")
		}
		if item.BudgetCode == "" {
			return errors.New("item budget code is required")
		}
		sum += item.Amount
	}
	if sum != pr.TotalAmount {
		return errors.New("total amount does not match sum of items")
	}
	return nil
}

// SumItems 计算明细金额合计
func SumItems(items []RequestItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Amount
	}
	return sum
}
