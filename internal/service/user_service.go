package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/trustspirit/reimburse-gin/internal/model"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/utils"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
	"gorm.io/gorm"
)

// UserService 用户服务接口
type UserService interface {
	Create(ctx context.Context, actor workflow.Actor, req *CreateUserRequest) (*model.AppUserModel, error)
	Authenticate(email string, password string) (*model.AppUserModel, error)
	Get(uid string) (*model.AppUserModel, error)
	UpdateProfile(ctx context.Context, actor workflow.Actor, uid string, req *UpdateProfileRequest) (*model.AppUserModel, error)
	UpdateRole(ctx context.Context, actor workflow.Actor, uid string, role string) error
}

// CreateUserRequest 创建用户的请求参数
// @Description 创建用户的请求参数,仅管理员可调用
type CreateUserRequest struct {
	Name       string   `json:"name" example:"김철수" binding:"required"`
	Email      string   `json:"email" example:"user@example.com" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=8"`
	Role       string   `json:"role" example:"member" binding:"required"`
	ProjectIDs []string `json:"projectIds"`
}

// UpdateProfileRequest 更新个人档案的请求参数
// @Description 更新银行信息/电话/默认签名,省略的字段保持不变
type UpdateProfileRequest struct {
	BankName    *string `json:"bankName"`
	BankAccount *string `json:"bankAccount"`
	Phone       *string `json:"phone"`
	Signature   *string `json:"signature"` // 默认签名图片(base64)
}

type userService struct {
	userRepo    repository.UserRepository
	cipher      *BankCipher
	auditLogSvc AuditLogService
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, cipher *BankCipher, auditLogSvc AuditLogService) UserService {
	return &userService{userRepo: userRepo, cipher: cipher, auditLogSvc: auditLogSvc}
}

// Create 创建用户(仅管理员)
func (s *userService) Create(ctx context.Context, actor workflow.Actor, req *CreateUserRequest) (*model.AppUserModel, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, workflow.NewUnauthorizedError("only admin can create users")
	}
	if _, ok := workflow.ParseRole(req.Role); !ok {
		return nil, workflow.NewValidationError("unknown role %q", req.Role)
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, workflow.NewConflictError("email %s already registered", req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.AppUserModel{
		UID:          uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		ProjectIDs:   req.ProjectIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, workflow.NewValidationError("%s", err.Error())
	}
	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.UID, "create", "user", user.UID, map[string]interface{}{
			"role": user.Role,
		})
	}
	return user, nil
}

// Authenticate 校验邮箱密码,成功返回用户
func (s *userService) Authenticate(email string, password string) (*model.AppUserModel, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分用户不存在与密码错误,避免账号枚举
			return nil, workflow.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if !utils.VerifyPassword(password, user.PasswordHash) {
		return nil, workflow.NewUnauthorizedError("invalid email or password")
	}
	return user, nil
}

// Get 获取用户档案,银行账号以明文返回
func (s *userService) Get(uid string) (*model.AppUserModel, error) {
	user, err := s.userRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("user %s not found", uid)
		}
		return nil, err
	}
	user.BankAccount = s.cipher.Decrypt(user.BankAccount)
	return user, nil
}

// UpdateProfile 更新个人档案
// 本人或管理员可更新;银行账号加密后落库
func (s *userService) UpdateProfile(ctx context.Context, actor workflow.Actor, uid string, req *UpdateProfileRequest) (*model.AppUserModel, error) {
	if actor.UID != uid && actor.Role != workflow.RoleAdmin {
		return nil, workflow.NewUnauthorizedError("cannot update another user's profile")
	}

	user, err := s.userRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.NewValidationError("user %s not found", uid)
		}
		return nil, err
	}

	if req.BankName != nil {
		user.BankName = *req.BankName
	}
	if req.BankAccount != nil {
		encrypted, err := s.cipher.Encrypt(*req.BankAccount)
		if err != nil {
			return nil, err
		}
		user.BankAccount = encrypted
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Signature != nil {
		user.Signature = *req.Signature
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.UID, "update_profile", "user", uid, nil)
	}

	user.BankAccount = s.cipher.Decrypt(user.BankAccount)
	return user, nil
}

// UpdateRole 变更用户角色(仅管理员)
func (s *userService) UpdateRole(ctx context.Context, actor workflow.Actor, uid string, role string) error {
	if actor.Role != workflow.RoleAdmin {
		return workflow.NewUnauthorizedError("only admin can change roles")
	}
	if _, ok := workflow.ParseRole(role); !ok {
		return workflow.NewValidationError("unknown role %q", role)
	}

	user, err := s.userRepo.FindByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workflow.NewValidationError("user %s not found", uid)
		}
		return err
	}

	oldRole := user.Role
	user.Role = role
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Save(user); err != nil {
		return err
	}

	if s.auditLogSvc != nil {
		_ = s.auditLogSvc.RecordAction(ctx, actor.UID, "update_role", "user", uid, map[string]interface{}{
			"from": oldRole,
			"to":   role,
		})
	}
	return nil
}
