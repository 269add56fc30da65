package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		grants     Grants
		permission string
		want       bool
	}{
		{
			name:       "held in single category",
			grants:     Grants{"categoryA": {"x.read"}},
			permission: "x.read",
			want:       true,
		},
		{
			name:       "empty grants",
			grants:     Grants{},
			permission: "x.read",
			want:       false,
		},
		{
			name:       "nil grants",
			grants:     nil,
			permission: "x.read",
			want:       false,
		},
		{
			name: "held in later category",
			grants: Grants{
				"users": {"user.view"},
				"rooms": {"room.view", "room.update"},
			},
			permission: "room.update",
			want:       true,
		},
		{
			name:       "category name does not count as a permission",
			grants:     Grants{"x.read": {"other"}},
			permission: "x.read",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.grants, tt.permission))
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	grants := Grants{"rooms": {"room.view"}}

	assert.True(t, HasAnyPermission(grants, []string{"room.delete", "room.view"}))
	assert.False(t, HasAnyPermission(grants, []string{"room.delete", "room.create"}))
	assert.False(t, HasAnyPermission(grants, nil))
	assert.False(t, HasAnyPermission(Grants{}, []string{"room.view"}))
}

func TestHasAllPermissions(t *testing.T) {
	grants := Grants{
		"users": {"user.view", "user.create"},
		"rooms": {"room.view"},
	}

	assert.True(t, HasAllPermissions(grants, []string{"user.view", "room.view"}))
	assert.False(t, HasAllPermissions(grants, []string{"user.view", "user.delete"}))

	// Vacuously true for an empty list, even with empty grants.
	assert.True(t, HasAllPermissions(grants, nil))
	assert.True(t, HasAllPermissions(Grants{}, []string{}))
	assert.True(t, HasAllPermissions(nil, nil))
}

func TestHasRole(t *testing.T) {
	principal := &Principal{
		ID:   "u-1",
		Role: Role{Name: "admin", Label: "Administrator"},
		Permissions: Grants{
			"users": {"user.view", "user.create"},
		},
	}

	assert.True(t, HasRole(principal, "admin"))
	assert.False(t, HasRole(principal, "manager"))
	assert.False(t, HasRole(principal, "Admin"), "role match is case-sensitive")
	assert.False(t, HasRole(nil, "admin"))
}

func TestDisplayNameForRole(t *testing.T) {
	assert.Equal(t, "Administrator", DisplayNameForRole("admin"))
	assert.Equal(t, "Manager", DisplayNameForRole("manager"))
	assert.Equal(t, "Customer", DisplayNameForRole("customer"))

	// Unknown roles fall back to the raw name.
	assert.Equal(t, "night-auditor", DisplayNameForRole("night-auditor"))
	assert.Equal(t, "", DisplayNameForRole(""))
}

func TestPrincipalValid(t *testing.T) {
	assert.False(t, (*Principal)(nil).Valid())
	assert.False(t, (&Principal{ID: "u-1"}).Valid())
	assert.True(t, (&Principal{ID: "u-1", Role: Role{Name: "customer"}}).Valid())
}

func TestAdminScenario(t *testing.T) {
	principal := &Principal{
		ID:   "u-9",
		Role: Role{Name: "admin"},
		Permissions: Grants{
			"users": {"user.view", "user.create"},
		},
	}

	assert.True(t, HasRole(principal, "admin"))
	assert.False(t, HasRole(principal, "manager"))
	assert.True(t, HasPermission(principal.Permissions, "user.create"))
	assert.False(t, HasPermission(principal.Permissions, "user.delete"))
}
