package capability

import (
	"log/slog"
	"strings"
)

// Item is a single sidebar entry. IsActive is derived from the current
// location and recomputed per request, never persisted.
type Item struct {
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	URL      string `json:"url"`
	IsActive bool   `json:"is_active"`
}

// Group is an ordered, labelled section of sidebar items.
type Group struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Each role's tree is authored independently; there is no inheritance
// between roles. All URLs carry the role's own segment prefix.
var navigationTables = map[Role][]Group{
	RoleCEO: {
		{Label: "Overview", Items: []Item{
			{Title: "Dashboard", Icon: "home", URL: "/ceo"},
			{Title: "Statistics", Icon: "chart", URL: "/ceo/statistics"},
		}},
		{Label: "Organization", Items: []Item{
			{Title: "Branches", Icon: "building", URL: "/ceo/branches"},
			{Title: "Employees", Icon: "users", URL: "/ceo/employees"},
			{Title: "Cashiers", Icon: "cash", URL: "/ceo/cashiers"},
		}},
		{Label: "Operations", Items: []Item{
			{Title: "Products", Icon: "box", URL: "/ceo/products"},
			{Title: "Rentals", Icon: "calendar", URL: "/ceo/rentals"},
			{Title: "Services", Icon: "wrench", URL: "/ceo/services"},
			{Title: "Sales", Icon: "cart", URL: "/ceo/sales"},
		}},
		{Label: "Records", Items: []Item{
			{Title: "History", Icon: "clock", URL: "/ceo/history"},
		}},
	},
	RoleManager: {
		{Label: "Overview", Items: []Item{
			{Title: "Dashboard", Icon: "home", URL: "/manager"},
		}},
		{Label: "People", Items: []Item{
			{Title: "Clients", Icon: "users", URL: "/manager/clients"},
			{Title: "Cashiers", Icon: "cash", URL: "/manager/cashiers"},
		}},
		{Label: "Operations", Items: []Item{
			{Title: "Products", Icon: "box", URL: "/manager/products"},
			{Title: "Rentals", Icon: "calendar", URL: "/manager/rentals"},
			{Title: "Services", Icon: "wrench", URL: "/manager/services"},
			{Title: "Sales", Icon: "cart", URL: "/manager/sales"},
		}},
		{Label: "Records", Items: []Item{
			{Title: "History", Icon: "clock", URL: "/manager/history"},
		}},
	},
	RoleService: {
		{Label: "Overview", Items: []Item{
			{Title: "Dashboard", Icon: "home", URL: "/service"},
		}},
		{Label: "Workshop", Items: []Item{
			{Title: "Repairs", Icon: "wrench", URL: "/service/repairs"},
			{Title: "Spare Parts", Icon: "cog", URL: "/service/parts"},
		}},
		{Label: "Records", Items: []Item{
			{Title: "History", Icon: "clock", URL: "/service/history"},
		}},
	},
	RoleStorekeeper: {
		{Label: "Overview", Items: []Item{
			{Title: "Dashboard", Icon: "home", URL: "/storekeeper"},
		}},
		{Label: "Store", Items: []Item{
			{Title: "Products", Icon: "box", URL: "/storekeeper/products"},
			{Title: "Sales", Icon: "cart", URL: "/storekeeper/sales"},
			{Title: "Rentals", Icon: "calendar", URL: "/storekeeper/rentals"},
			{Title: "Clients", Icon: "users", URL: "/storekeeper/clients"},
		}},
		{Label: "Records", Items: []Item{
			{Title: "History", Icon: "clock", URL: "/storekeeper/history"},
		}},
	},
	RoleWarehouse: {
		{Label: "Overview", Items: []Item{
			{Title: "Dashboard", Icon: "home", URL: "/warehouse"},
		}},
		{Label: "Warehouse", Items: []Item{
			{Title: "Products", Icon: "box", URL: "/warehouse/products"},
			{Title: "Intake", Icon: "download", URL: "/warehouse/intake"},
			{Title: "Transfers", Icon: "truck", URL: "/warehouse/transfers"},
		}},
		{Label: "Records", Items: []Item{
			{Title: "History", Icon: "clock", URL: "/warehouse/history"},
		}},
	},
}

// Resolver derives navigation trees from roles.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver constructs a Resolver. A nil logger disables fallback logging.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Navigation returns the role's sidebar tree. Resolution is total: a role
// outside the enumerated set yields the warehouse tree so the sidebar is
// never blank, and the fallback is logged so it cannot pass silently.
func (res *Resolver) Navigation(role Role) []Group {
	groups, ok := navigationTables[role]
	if !ok {
		if res.logger != nil {
			res.logger.Warn("unknown role, serving warehouse navigation",
				slog.String("role", role.String()))
		}
		groups = navigationTables[RoleWarehouse]
	}
	return cloneGroups(groups)
}

// MarkActive returns a copy of groups with IsActive set on every item whose
// URL equals the current path, or, for URLs below the role root, prefixes
// the current path. Nested routes keep their parent item highlighted.
func MarkActive(groups []Group, currentPath string) []Group {
	marked := cloneGroups(groups)
	for gi := range marked {
		for ii := range marked[gi].Items {
			item := &marked[gi].Items[ii]
			item.IsActive = pathMatches(item.URL, currentPath)
		}
	}
	return marked
}

func pathMatches(url, currentPath string) bool {
	if currentPath == url {
		return true
	}
	// Role dashboards live at "/{segment}"; prefix matching there would
	// light the dashboard up for every route of the role.
	if strings.Count(url, "/") < 2 {
		return false
	}
	return strings.HasPrefix(currentPath, url+"/")
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		items := make([]Item, len(g.Items))
		copy(items, g.Items)
		out[i] = Group{Label: g.Label, Items: items}
	}
	return out
}
