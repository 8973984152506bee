package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// 哨兵错误
var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidID 标识符格式非法（对应 CastError）
	ErrInvalidID = errors.New("invalid id format")
	// ErrDuplicateRequest 短时间内重复提交的经理请求
	ErrDuplicateRequest = errors.New("duplicate request")
)

// Violation 单条校验失败
type Violation struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"` // required / enum / cast
	Message string `json:"message"`
}

// ValidationError 聚合所有校验失败，而不是只返回第一条
type ValidationError struct {
	Entity     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := e.Messages()
	return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(msgs, "; "))
}

// Messages 返回全部错误信息
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// HasField 判断某字段是否校验失败
func (e *ValidationError) HasField(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// DuplicateKeyError 唯一约束冲突
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// MissingFieldError 请求缺少必填参数（不经过 schema 的操作使用）
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// NotFoundError 带实体信息的 ErrNotFound
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound 构造 NotFoundError
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TransportError 邮件投递失败，不重试，直接返回给调用方
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail delivery failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
