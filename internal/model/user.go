package model

import (
	"errors"
	"time"

	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// AppUserModel 用户数据模型
type AppUserModel struct {
	UID          string    `gorm:"primaryKey;type:varchar(64)" json:"uid"`
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"` // bcrypt
	Role         string    `gorm:"type:varchar(32);not null;index" json:"role"`
	BankName     string    `gorm:"type:varchar(128)" json:"bankName"`
	BankAccount  string    `gorm:"type:text" json:"bankAccount"` // AES-256-GCM 加密存储
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	Signature    string    `gorm:"type:text" json:"signature"` // 默认签名图片(base64)
	ProjectIDs   []string  `gorm:"type:jsonb;serializer:json" json:"projectIds"`
	CreatedAt    time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName 指定表名
func (AppUserModel) TableName() string {
	return "app_users"
}

// Validate 验证用户模型
func (um *AppUserModel) Validate() error {
	if um.UID == "" {
		return errors.New("user UID is required")
	}
	if um.Name == "" {
		return errors.New("user name is required")
	}
	if um.Email == "" {
		return errors.New("user email is required")
	}
	if !workflow.Role(um.Role).IsValid() {
		return errors.New("invalid user role")
	}
	return nil
}

// MemberOf 判断用户是否属于指定项目
func (um *AppUserModel) MemberOf(projectID string) bool {
	for _, id := range um.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}
