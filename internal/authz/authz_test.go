package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/nexus-console/internal/domain"
)

func TestCanPerformExhaustive(t *testing.T) {
	expected := map[Capability][]domain.Role{
		CreateTicket: {domain.RoleAdmin, domain.RoleAgent, domain.RoleSales},
		AssignTicket: {domain.RoleAdmin, domain.RoleTaskAssigner, domain.RoleManagement},
		CreateTask:   {domain.RoleAdmin, domain.RoleTaskAssigner, domain.RoleManagement},
		ManageStaff:  {domain.RoleAdmin},
		JoinChat:     {domain.RoleAdmin, domain.RoleAgent, domain.RoleSales},
	}

	for action, allowed := range expected {
		allowedSet := map[domain.Role]bool{}
		for _, r := range allowed {
			allowedSet[r] = true
		}
		for _, role := range domain.AllRoles() {
			assert.Equal(t, allowedSet[role], CanPerform(action, role), "action=%s role=%s", action, role)
		}
	}
}

func TestCanPerformRejectsUnknowns(t *testing.T) {
	assert.False(t, CanPerform("delete-universe", domain.RoleAdmin))
	assert.False(t, CanPerform(CreateTicket, domain.Role("SUPERUSER")))
	assert.False(t, CanPerform(CreateTicket, domain.Role("")))
}

func TestViewDashboardAllowsEveryRole(t *testing.T) {
	for _, role := range domain.AllRoles() {
		assert.True(t, CanPerform(ViewDashboard, role), role)
	}
}

func TestAllowedReturnsCopy(t *testing.T) {
	roles := Allowed(ManageStaff)
	require.Equal(t, []domain.Role{domain.RoleAdmin}, roles)
	roles[0] = domain.RoleSales
	assert.False(t, CanPerform(ManageStaff, domain.RoleSales))
}

func TestForRole(t *testing.T) {
	granted := For(domain.RoleDeveloper)
	assert.ElementsMatch(t, []Capability{ViewDashboard, ViewTickets, ViewTasks}, granted)
}

func TestIdentityCan(t *testing.T) {
	assert.False(t, IdentityCan(ManageStaff, nil))
	assert.True(t, IdentityCan(ManageStaff, &domain.Identity{ID: "1", Role: domain.RoleAdmin}))
}
