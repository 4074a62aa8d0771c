package service

import (
	"context"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

// StaffService manages the staff roster.
type StaffService struct {
	staff      repository.StaffRepository
	dispatcher events.Dispatcher
}

// StaffDependencies bundles repositories.
type StaffDependencies struct {
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
}

// NewStaffService creates the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	return &StaffService{staff: deps.StaffRepo, dispatcher: deps.Dispatcher}
}

// List returns the roster without credentials.
func (s *StaffService) List(ctx context.Context) ([]domain.Identity, error) {
	accounts, err := s.staff.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]domain.Identity, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Identity)
	}
	return out, nil
}

// UpdateRole changes a staff member's role. The route guard has already
// checked that actor may manage staff.
func (s *StaffService) UpdateRole(ctx context.Context, actor domain.Identity, id string, role domain.Role) (*domain.Identity, error) {
	if !role.Known() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	account, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.staff.UpdateRole(ctx, id, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.New(events.EventStaffRoleChanged, id, actor.ID, events.StaffRoleChangedPayload{
		OldRole: account.Role,
		NewRole: role,
	}))
	identity := account.Identity
	identity.Role = role
	return &identity, nil
}
