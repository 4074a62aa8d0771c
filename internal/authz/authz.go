// Package authz holds the single capability table that decides which roles
// may perform which console action. Both the console views and the
// devserver route guards read from it.
package authz

import "github.com/spec-kit/nexus-console/internal/domain"

// Capability names a permission gated by role.
type Capability string

const (
	CreateTicket       Capability = "create-ticket"
	AssignTicket       Capability = "assign-ticket"
	CreateTask         Capability = "create-task"
	ManageStaff        Capability = "manage-staff"
	JoinChat           Capability = "join-chat"
	ManageTicketStatus Capability = "manage-ticket-status"

	ViewDashboard Capability = "view-dashboard"
	ViewChat      Capability = "view-chat"
	ViewTickets   Capability = "view-tickets"
	ViewTasks     Capability = "view-tasks"
	ViewStaff     Capability = "view-staff"
)

var table = map[Capability][]domain.Role{
	CreateTicket:       {domain.RoleAdmin, domain.RoleAgent, domain.RoleSales},
	AssignTicket:       {domain.RoleAdmin, domain.RoleTaskAssigner, domain.RoleManagement},
	CreateTask:         {domain.RoleAdmin, domain.RoleTaskAssigner, domain.RoleManagement},
	ManageStaff:        {domain.RoleAdmin},
	JoinChat:           {domain.RoleAdmin, domain.RoleAgent, domain.RoleSales},
	ManageTicketStatus: {domain.RoleAdmin, domain.RoleManagement, domain.RoleTaskAssigner},

	ViewDashboard: domain.AllRoles(),
	ViewChat:      {domain.RoleAdmin, domain.RoleAgent, domain.RoleSales},
	ViewTickets:   {domain.RoleAdmin, domain.RoleAgent, domain.RoleTaskAssigner, domain.RoleDeveloper, domain.RoleManagement},
	ViewTasks:     {domain.RoleAdmin, domain.RoleTaskAssigner, domain.RoleDeveloper, domain.RoleManagement},
	ViewStaff:     {domain.RoleAdmin},
}

// CanPerform reports whether role is on the allow-list for action.
// Unknown actions and roles outside the closed set are denied.
func CanPerform(action Capability, role domain.Role) bool {
	for _, allowed := range table[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// Allowed returns a copy of the allow-list for action.
func Allowed(action Capability) []domain.Role {
	roles := table[action]
	out := make([]domain.Role, len(roles))
	copy(out, roles)
	return out
}

// Capabilities lists every capability in the table.
func Capabilities() []Capability {
	return []Capability{
		CreateTicket, AssignTicket, CreateTask, ManageStaff, JoinChat, ManageTicketStatus,
		ViewDashboard, ViewChat, ViewTickets, ViewTasks, ViewStaff,
	}
}

// For returns the capabilities granted to role.
func For(role domain.Role) []Capability {
	var granted []Capability
	for _, c := range Capabilities() {
		if CanPerform(c, role) {
			granted = append(granted, c)
		}
	}
	return granted
}

// IdentityCan is CanPerform for an optional identity; nil is never allowed.
func IdentityCan(action Capability, id *domain.Identity) bool {
	if id == nil {
		return false
	}
	return CanPerform(action, id.Role)
}
