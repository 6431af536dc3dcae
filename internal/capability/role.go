package capability

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role identifies a dashboard user's function and therefore the navigation
// and action scope derived for them. Exactly one role is active per session.
type Role uint8

const (
	// RoleUnknown is the zero value; it never appears in a valid session.
	RoleUnknown Role = iota
	RoleCEO
	RoleManager
	RoleService
	RoleStorekeeper
	RoleWarehouse
)

var roleNames = map[Role]string{
	RoleCEO:         "ceo",
	RoleManager:     "manager",
	RoleService:     "service",
	RoleStorekeeper: "storekeeper",
	RoleWarehouse:   "warehouse",
}

// Legacy spellings still emitted by older dashboard builds. The cashier
// variants were never navigation roles; they map onto the storekeeper scope.
var roleAliases = map[string]Role{
	"store":        RoleStorekeeper,
	"rent_cashier": RoleStorekeeper,
	"sale_cashier": RoleStorekeeper,
}

var titleCaser = cases.Title(language.English)

// Roles returns every enumerated role in display order.
func Roles() []Role {
	return []Role{RoleCEO, RoleManager, RoleService, RoleStorekeeper, RoleWarehouse}
}

// ParseRole resolves a role string case-insensitively, accepting legacy
// aliases. The boolean reports whether the input matched a known role.
func ParseRole(s string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if normalized == name {
			return role, true
		}
	}
	if role, ok := roleAliases[normalized]; ok {
		return role, true
	}
	return RoleUnknown, false
}

// Valid reports whether the role is one of the enumerated members.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// String returns the canonical lowercase tag.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Segment returns the URL path segment owned by the role. All routes for a
// role live under "/" + Segment().
func (r Role) Segment() string {
	return r.String()
}

// DisplayName returns a human readable label, e.g. "Storekeeper".
func (r Role) DisplayName() string {
	if r == RoleCEO {
		return "CEO"
	}
	return titleCaser.String(strings.ReplaceAll(r.String(), "_", " "))
}
