package access

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantTable_GrantsForRole(t *testing.T) {
	table := DefaultGrantTable()

	assert.True(t, HasPermission(table.GrantsForRole("admin"), "user.delete"))
	assert.False(t, HasPermission(table.GrantsForRole("manager"), "user.delete"))
	assert.True(t, HasPermission(table.GrantsForRole("customer"), "room.view"))

	// Unknown roles get empty grants, not nil panics.
	assert.False(t, HasPermission(table.GrantsForRole("ghost"), "room.view"))
}

func TestLoadGrantTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grants.yaml")
	contents := `
admin:
  users:
    - user.view
    - user.create
  rooms:
    - room.view
customer:
  rooms:
    - room.view
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	table, err := LoadGrantTable(path)
	require.NoError(t, err)

	assert.True(t, HasPermission(table.GrantsForRole("admin"), "user.create"))
	assert.True(t, HasPermission(table.GrantsForRole("customer"), "room.view"))
	assert.False(t, HasPermission(table.GrantsForRole("customer"), "user.view"))
}

func TestLoadGrantTable_Errors(t *testing.T) {
	_, err := LoadGrantTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin: [not: a: map"), 0644))
	_, err = LoadGrantTable(path)
	assert.Error(t, err)
}
