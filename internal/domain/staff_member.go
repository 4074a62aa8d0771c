package domain

// Role enumerates console operator roles.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleAgent        Role = "AGENT"
	RoleTaskAssigner Role = "TASK_ASSIGNER"
	RoleDeveloper    Role = "DEVELOPER"
	RoleSales        Role = "SALES"
	RoleManagement   Role = "MANAGEMENT"
)

// AllRoles lists the closed role set in display order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleAgent, RoleTaskAssigner, RoleDeveloper, RoleSales, RoleManagement}
}

// Known reports whether the role belongs to the closed set.
func (r Role) Known() bool {
	for _, candidate := range AllRoles() {
		if r == candidate {
			return true
		}
	}
	return false
}

// Presence is the staff availability indicator.
type Presence string

const (
	PresenceOnline  Presence = "ONLINE"
	PresenceBusy    Presence = "BUSY"
	PresenceOffline Presence = "OFFLINE"
)

// Identity is an authenticated staff member as returned by the API.
type Identity struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   Role     `json:"role"`
	Status Presence `json:"status"`
}

// Key implements store.Record.
func (i Identity) Key() string { return i.ID }

// StaffAccount is a staff member as the devserver stores it.
type StaffAccount struct {
	Identity
	PasswordHash string
}
