package repository

import (
	"github.com/trustspirit/reimburse-gin/internal/model"
	"gorm.io/gorm"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(user *model.AppUserModel) error
	FindByUID(uid string) (*model.AppUserModel, error)
	FindByEmail(email string) (*model.AppUserModel, error)
	FindByRole(role string) ([]*model.AppUserModel, error)
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Save 保存用户
func (r *userRepository) Save(user *model.AppUserModel) error {
	return r.db.Save(user).Error
}

// FindByUID 根据 UID 查找用户
func (r *userRepository) FindByUID(uid string) (*model.AppUserModel, error) {
	var user model.AppUserModel
	if err := r.db.Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.AppUserModel, error) {
	var user model.AppUserModel
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByRole 根据角色查找用户(通知协作方定位审核人/批准人用)
func (r *userRepository) FindByRole(role string) ([]*model.AppUserModel, error) {
	var users []*model.AppUserModel
	err := r.db.Where("role = ?", role).Find(&users).Error
	return users, err
}
