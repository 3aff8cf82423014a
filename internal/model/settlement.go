package model

import (
	"errors"
	"time"
)

// SettlementModel 结算记录数据模型
// 一条结算记录按收款人分组合并一个或多个已批准的申请
type SettlementModel struct {
	ID                   string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID            string        `gorm:"type:varchar(64);not null;index" json:"projectId"`
	RequestIDs           []string      `gorm:"type:jsonb;serializer:json;not null" json:"requestIds"`
	Payee                Actor         `gorm:"type:jsonb;serializer:json;not null" json:"payee"` // 取自组内首个申请
	Phone                string        `gorm:"type:varchar(32)" json:"phone"`
	BankName             string        `gorm:"type:varchar(128)" json:"bankName"`
	BankAccount          string        `gorm:"type:varchar(128)" json:"bankAccount"`
	Session              string        `gorm:"type:varchar(64);index" json:"session"`
	Committee            string        `gorm:"type:varchar(32);not null;index" json:"committee"`
	Items                []RequestItem `gorm:"type:jsonb;serializer:json;not null" json:"items"` // 组内申请明细按选择顺序拼接
	TotalAmount          int64         `gorm:"type:bigint;not null" json:"totalAmount"`
	Receipts             []Receipt     `gorm:"type:jsonb;serializer:json" json:"receipts"`
	ApprovedBy           *Actor        `gorm:"type:jsonb;serializer:json" json:"approvedBy"`
	ApprovalSignature    string        `gorm:"type:text" json:"approvalSignature"`
	RequestedBySignature string        `gorm:"type:text" json:"requestedBySignature"`
	CreatedBy            string        `gorm:"type:varchar(64);index" json:"-"` // 执行结算的财务操作员
	CreatedAt            time.Time     `gorm:"not null;index" json:"createdAt"`
	UpdatedAt            time.Time     `gorm:"not null" json:"updatedAt"`
}

// TableName 指定表名
func (SettlementModel) TableName() string {
	return "settlements"
}

// Validate 验证结算模型
func (sm *SettlementModel) Validate() error {
	if sm.ID == "" {
		return errors.New("settlement ID is required")
	}
	if sm.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if len(sm.RequestIDs) == 0 {
		return errors.New("settlement must close at least one request")
	}
	if len(sm.Items) == 0 {
		return errors.New("settlement items are required")
	}
	if sm.ApprovalSignature == "" {
		return errors.New("approval signature is required")
	}
	return nil
}
