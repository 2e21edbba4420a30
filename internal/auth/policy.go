package auth

import "errors"

// ErrForbidden is returned when the principal's role does not permit the
// requested action.
var ErrForbidden = errors.New("forbidden")

// Role is the closed set of staff roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleKitchen Role = "kitchen"
)

// ParseRole maps a stored role string onto the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleStaff, RoleKitchen:
		return Role(s), true
	}
	return "", false
}

// Action names a role-gated operation of the API surface.
type Action string

const (
	ActionManageTables      Action = "tables:manage"
	ActionViewTables        Action = "tables:view"
	ActionFreeTable         Action = "tables:free"
	ActionResolveAssistance Action = "tables:resolve_assistance"
	ActionOpenOrder         Action = "orders:open"
	ActionAppendItems       Action = "orders:append"
	ActionTransitionOrder   Action = "orders:transition"
	ActionViewOrders        Action = "orders:view"
	ActionManageMenu        Action = "menu:manage"
	ActionViewFullMenu      Action = "menu:view_full"
	ActionManageUsers       Action = "users:manage"
)

// policy is the single (action, role) → allow table. Admin is always
// allowed.
var policy = map[Action][]Role{
	ActionManageTables:      {},
	ActionViewTables:        {RoleStaff, RoleKitchen},
	ActionFreeTable:         {RoleStaff},
	ActionResolveAssistance: {RoleStaff},
	ActionOpenOrder:         {RoleStaff},
	ActionAppendItems:       {RoleStaff},
	ActionTransitionOrder:   {RoleStaff, RoleKitchen},
	ActionViewOrders:        {RoleStaff, RoleKitchen},
	ActionManageMenu:        {RoleKitchen},
	ActionViewFullMenu:      {RoleStaff, RoleKitchen},
	ActionManageUsers:       {},
}

// Allowed reports whether the role may perform the action.
func Allowed(action Action, role Role) bool {
	if role == RoleAdmin {
		return true
	}
	for _, r := range policy[action] {
		if r == role {
			return true
		}
	}
	return false
}
