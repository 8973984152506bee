package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole("u1", RoleManager, RoleManager, ""))

	err := RequireRole("u1", RoleCustomer, RoleManager, "Invalid manager role")
	require.Error(t, err)

	var rv *RoleViolationError
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, "u1", rv.UserID)
	assert.Equal(t, RoleCustomer, rv.Actual)
	assert.Equal(t, "Invalid manager role", rv.Error())
}

func TestRoleViolationDefaultMessage(t *testing.T) {
	err := RequireRole("u2", RoleManager, RoleCustomer, "")
	assert.Contains(t, err.Error(), `"customer" required`)
}

func TestRoles(t *testing.T) {
	assert.Equal(t, []string{RoleCustomer, RoleManager}, Roles())
	assert.NotContains(t, Roles(), "admin")
}
