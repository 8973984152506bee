package rbac

import "fmt"

// 角色常量
const (
	RoleCustomer = "customer"
	RoleManager  = "manager"
)

// Roles 全部合法角色
func Roles() []string {
	return []string{RoleCustomer, RoleManager}
}

// RequireRole 检查用户是否具有指定角色（返回错误而不是布尔值，便于处理）
func RequireRole(userID, actual, required, message string) error {
	if actual != required {
		return &RoleViolationError{
			UserID:   userID,
			Actual:   actual,
			Required: required,
			Message:  message,
		}
	}
	return nil
}

// RoleViolationError 表示用户角色不符合操作要求
type RoleViolationError struct {
	UserID   string
	Actual   string
	Required string
	// Message 返回给调用方的提示
	Message string
}

func (e *RoleViolationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("user %s has role %q, %q required", e.UserID, e.Actual, e.Required)
}
