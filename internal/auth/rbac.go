package auth

import (
	"labsys.dev/lab-control/internal/store"
)

// Action is a capability the management API gates on role.
type Action string

// Actions gated by role. Relay control and schedule reads are open to any
// authenticated account; schedule and account mutation is admin-only.
const (
	ActionControlRelays      Action = "control-relays"
	ActionReadSchedules      Action = "read-schedules"
	ActionManageSchedules    Action = "manage-schedules"
	ActionManageWorkingHours Action = "manage-working-hours"
	ActionManageUsers        Action = "manage-users"
)

// adminOnly lists the actions reserved for the admin role.
var adminOnly = map[Action]bool{
	ActionManageSchedules:    true,
	ActionManageWorkingHours: true,
	ActionManageUsers:        true,
}

// Allowed reports whether a role may perform an action. It is a pure
// function over the closed role set so capability rules can be tested
// independently of transport.
func Allowed(role store.Role, action Action) bool {
	if !store.ValidRole(role) {
		return false
	}
	if adminOnly[action] {
		return role == store.RoleAdmin
	}
	return true
}
