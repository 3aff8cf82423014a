package workflow

import (
	"errors"
	"fmt"
)

// 核心错误分类。所有核心错误都是同步返回值,调用方用 errors.Is 区分四类:
//   - ErrUnauthorized: 角色/委员会/金额/本人操作等权限不足
//   - ErrValidation:   转换缺少必填字段或字段非法
//   - ErrConflict:     持久化状态与预期前置状态不一致(并发竞争)
//   - ErrPrecondition: 结算批次前置条件不满足(缺少签名/超出批次上限)
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
)

// DomainError 领域错误,携带分类与上下文消息
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap 支持 errors.Is 按分类匹配
func (e *DomainError) Unwrap() error {
	return e.Kind
}

// NewUnauthorizedError 创建权限错误
func NewUnauthorizedError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError 创建校验错误
func NewValidationError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError 创建冲突错误
func NewConflictError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// NewPreconditionError 创建结算前置条件错误
func NewPreconditionError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrPrecondition, Message: fmt.Sprintf(format, args...)}
}
