// Package viewmodel derives what a user role is allowed to see and do, so
// no role check ever lives in presentation code. It is pure: the role comes
// in from the session boundary and a capability set comes out.
package viewmodel

import "github.com/hmkim/ordertrack/pkg/models"

// Capabilities is the action set the views gate on.
type Capabilities struct {
	CanMutateStatus   bool
	CanDelete         bool
	CanRestore        bool
	CanAdd            bool
	ShowActionsColumn bool
}

// elevated is the set of roles with full mutation capability. Everything
// else, including an absent user, is read-only.
func elevated(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleMaster
}

// CapabilitiesFor maps a role to its capability set.
func CapabilitiesFor(role models.Role) Capabilities {
	if !elevated(role) {
		return Capabilities{}
	}
	return Capabilities{
		CanMutateStatus:   true,
		CanDelete:         true,
		CanRestore:        true,
		CanAdd:            true,
		ShowActionsColumn: true,
	}
}

// For is CapabilitiesFor with the nil-user convention of the session
// provider: no user means fully unprivileged.
func For(user *models.User) Capabilities {
	if user == nil {
		return Capabilities{}
	}
	return CapabilitiesFor(user.Role)
}

// OrderColumns returns the order list's visible columns for a capability
// set; the actions column only exists for roles that can act.
func OrderColumns(c Capabilities) []string {
	cols := []string{
		"id", "orderDate", "itemCode", "colorName", "orderQuantity",
		"expectedArrival", "arrivalDate", "arrivalQuantity", "status",
	}
	if c.ShowActionsColumn {
		cols = append(cols, "actions")
	}
	return cols
}

// InventoryColumns returns the inventory list's visible columns.
func InventoryColumns(c Capabilities) []string {
	cols := []string{
		"itemName", "color", "stock", "safetyStock", "unit", "location",
		"updatedAt",
	}
	if c.ShowActionsColumn {
		cols = append(cols, "actions")
	}
	return cols
}
