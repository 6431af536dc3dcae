package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleCanonical(t *testing.T) {
	for _, role := range Roles() {
		parsed, ok := ParseRole(role.String())
		require.True(t, ok, "role %s should parse", role)
		assert.Equal(t, role, parsed)
	}
}

func TestParseRoleCaseInsensitive(t *testing.T) {
	cases := map[string]Role{
		"CEO":     RoleCEO,
		"Manager": RoleManager,
		"SERVICE": RoleService,
		" ceo ":   RoleCEO,
	}
	for input, want := range cases {
		parsed, ok := ParseRole(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, parsed, "input %q", input)
	}
}

func TestParseRoleLegacyAliases(t *testing.T) {
	for _, alias := range []string{"Store", "rent_cashier", "sale_cashier"} {
		parsed, ok := ParseRole(alias)
		require.True(t, ok, "alias %q", alias)
		assert.Equal(t, RoleStorekeeper, parsed, "alias %q", alias)
	}
}

func TestParseRoleUnknown(t *testing.T) {
	for _, input := range []string{"", "admin", "superuser", "wharehouse"} {
		parsed, ok := ParseRole(input)
		assert.False(t, ok, "input %q", input)
		assert.Equal(t, RoleUnknown, parsed)
	}
}

func TestRoleSegment(t *testing.T) {
	assert.Equal(t, "storekeeper", RoleStorekeeper.Segment())
	assert.Equal(t, "ceo", RoleCEO.Segment())
	assert.Equal(t, "unknown", RoleUnknown.Segment())
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "CEO", RoleCEO.DisplayName())
	assert.Equal(t, "Storekeeper", RoleStorekeeper.DisplayName())
	assert.Equal(t, "Warehouse", RoleWarehouse.DisplayName())
}

func TestRoleValid(t *testing.T) {
	for _, role := range Roles() {
		assert.True(t, role.Valid())
	}
	assert.False(t, RoleUnknown.Valid())
	assert.False(t, Role(99).Valid())
}
