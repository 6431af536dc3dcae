package capability

import "sort"

// Action names gating individual dashboard controls.
const (
	ActionAddBranch      = "add_branch"
	ActionDeleteBranch   = "delete_branch"
	ActionAddEmployee    = "add_employee"
	ActionAddManager     = "add_manager"
	ActionAddCashier     = "add_cashier"
	ActionDeleteCashier  = "delete_cashier"
	ActionAddClient      = "add_client"
	ActionAddProduct     = "add_product"
	ActionDeleteProduct  = "delete_product"
	ActionAddRental      = "add_rental"
	ActionCloseRental    = "close_rental"
	ActionAddRepair      = "add_repair"
	ActionCompleteRepair = "complete_repair"
	ActionAddSale        = "add_sale"
	ActionTransferStock  = "transfer_stock"
	ActionViewStatistics = "view_statistics"
)

var actionRoles = map[string][]Role{
	ActionAddBranch:      {RoleCEO},
	ActionDeleteBranch:   {RoleCEO},
	ActionAddEmployee:    {RoleCEO},
	ActionAddManager:     {RoleCEO, RoleManager},
	ActionAddCashier:     {RoleCEO, RoleManager},
	ActionDeleteCashier:  {RoleCEO, RoleManager},
	ActionAddClient:      {RoleManager},
	ActionAddProduct:     {RoleManager, RoleStorekeeper, RoleWarehouse},
	ActionDeleteProduct:  {RoleManager},
	ActionAddRental:      {RoleManager, RoleStorekeeper},
	ActionCloseRental:    {RoleManager, RoleStorekeeper},
	ActionAddRepair:      {RoleService},
	ActionCompleteRepair: {RoleService},
	ActionAddSale:        {RoleManager, RoleStorekeeper},
	ActionTransferStock:  {RoleWarehouse},
	ActionViewStatistics: {RoleCEO},
}

// Allowed reports whether role is a member of the allowed set. Roles not
// explicitly listed are denied; so is RoleUnknown regardless of the list.
func Allowed(role Role, allowed ...Role) bool {
	if !role.Valid() {
		return false
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// Can reports whether role may perform the named action. Unknown actions
// deny everyone.
func Can(role Role, action string) bool {
	return Allowed(role, actionRoles[action]...)
}

// ActionsFor returns the sorted action names permitted for role.
func ActionsFor(role Role) []string {
	var actions []string
	for action, roles := range actionRoles {
		if Allowed(role, roles...) {
			actions = append(actions, action)
		}
	}
	sort.Strings(actions)
	return actions
}
