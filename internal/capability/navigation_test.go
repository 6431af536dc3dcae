package capability

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNavigationNonEmptyForEveryRole(t *testing.T) {
	resolver := newTestResolver()
	for _, role := range Roles() {
		groups := resolver.Navigation(role)
		require.NotEmpty(t, groups, "role %s", role)
		for _, group := range groups {
			assert.NotEmpty(t, group.Label, "role %s", role)
			assert.NotEmpty(t, group.Items, "role %s group %s", role, group.Label)
		}
	}
}

func TestNavigationNoCrossRoleLeakage(t *testing.T) {
	resolver := newTestResolver()
	for _, role := range Roles() {
		prefix := "/" + role.Segment()
		for _, group := range resolver.Navigation(role) {
			for _, item := range group.Items {
				ok := item.URL == prefix || strings.HasPrefix(item.URL, prefix+"/")
				assert.True(t, ok, "role %s leaks URL %s", role, item.URL)
			}
		}
	}
}

func TestNavigationUnknownRoleFallsBackToWarehouse(t *testing.T) {
	resolver := newTestResolver()
	fallback := resolver.Navigation(RoleUnknown)
	warehouse := resolver.Navigation(RoleWarehouse)
	assert.Equal(t, warehouse, fallback)
	assert.NotEmpty(t, fallback)
}

func TestNavigationReturnsIndependentCopies(t *testing.T) {
	resolver := newTestResolver()
	first := resolver.Navigation(RoleManager)
	first[0].Label = "mutated"
	first[0].Items[0].Title = "mutated"

	second := resolver.Navigation(RoleManager)
	assert.NotEqual(t, "mutated", second[0].Label)
	assert.NotEqual(t, "mutated", second[0].Items[0].Title)
}

func TestMarkActiveNestedRoute(t *testing.T) {
	resolver := newTestResolver()
	groups := MarkActive(resolver.Navigation(RoleManager), "/manager/clients/123")

	active := map[string]bool{}
	for _, group := range groups {
		for _, item := range group.Items {
			active[item.URL] = item.IsActive
		}
	}
	assert.True(t, active["/manager/clients"])
	assert.False(t, active["/manager/sales"])
	// The role dashboard only lights up on exact match.
	assert.False(t, active["/manager"])
}

func TestMarkActiveExactDashboard(t *testing.T) {
	resolver := newTestResolver()
	groups := MarkActive(resolver.Navigation(RoleManager), "/manager")
	found := false
	for _, group := range groups {
		for _, item := range group.Items {
			if item.URL == "/manager" {
				found = true
				assert.True(t, item.IsActive)
			} else {
				assert.False(t, item.IsActive, "url %s", item.URL)
			}
		}
	}
	require.True(t, found)
}

func TestMarkActiveDoesNotMutateInput(t *testing.T) {
	resolver := newTestResolver()
	groups := resolver.Navigation(RoleManager)
	_ = MarkActive(groups, "/manager/clients")
	for _, group := range groups {
		for _, item := range group.Items {
			assert.False(t, item.IsActive)
		}
	}
}
