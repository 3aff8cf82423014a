package model

import (
	"errors"
	"time"
)

// BudgetConfig 项目预算配置
type BudgetConfig struct {
	TotalBudget int64            `json:"totalBudget"` // <= 0 表示未配置预算
	ByCode      map[string]int64 `json:"byCode"`      // 按预算科目的分项额度
}

// ProjectModel 项目(租户)数据模型,所有申请与结算都归属于一个项目
type ProjectModel struct {
	ID                        string       `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name                      string       `gorm:"type:varchar(255);not null" json:"name"`
	BudgetConfig              BudgetConfig `gorm:"type:jsonb;serializer:json" json:"budgetConfig"`
	DirectorApprovalThreshold int64        `gorm:"type:bigint;not null;default:600000" json:"directorApprovalThreshold"`
	BudgetWarningThreshold    int          `gorm:"type:int;not null;default:85" json:"budgetWarningThreshold"` // 百分比 0-100
	CreatedAt                 time.Time    `gorm:"not null;index" json:"createdAt"`
	UpdatedAt                 time.Time    `gorm:"not null" json:"updatedAt"`
}

// TableName 指定表名
func (ProjectModel) TableName() string {
	return "projects"
}

// Validate 验证项目模型
func (pm *ProjectModel) Validate() error {
	if pm.ID == "" {
		return errors.New("project ID is required")
	}
	if pm.Name == "" {
		return errors.New("project name is required")
	}
	if pm.BudgetWarningThreshold < 0 || pm.BudgetWarningThreshold > 100 {
		return errors.New("budget warning threshold must be between 0 and 100")
	}
	return nil
}
