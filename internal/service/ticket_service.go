package service

import (
	"context"
	"strings"

	"github.com/spec-kit/nexus-console/internal/authz"
	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/events"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

// TicketService orchestrates ticket listing, status changes and assignment.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewTicketService creates the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{tickets: deps.TicketRepo, dispatcher: deps.Dispatcher}
}

// List returns every ticket.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// UpdateStatus moves a ticket to status. Managers may change any ticket;
// anyone else only the tickets assigned to them by name. Any status may
// follow any other.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Identity, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Known() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	isAssignee := ticket.AssignedTo != "" && ticket.AssignedTo == actor.Name
	if !authz.CanPerform(authz.ManageTicketStatus, actor.Role) && !isAssignee {
		return nil, apperrors.NewForbidden("not allowed to change this ticket")
	}

	if err := s.tickets.UpdateStatus(ctx, id, status); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.New(events.EventTicketStatusChanged, id, actor.ID, events.TicketStatusChangedPayload{
		OldStatus: ticket.Status,
		NewStatus: status,
	}))
	ticket.Status = status
	return ticket, nil
}

// Assign hands a ticket to assignee, identified by display name, and marks it ASSIGNED.
func (s *TicketService) Assign(ctx context.Context, actor domain.Identity, id, assignee string) (*domain.Ticket, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, apperrors.NewValidationError("assignee is required", nil)
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Assign(ctx, id, assignee, domain.TicketStatusAssigned); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.New(events.EventTicketAssigned, id, actor.ID, events.TicketAssignedPayload{Assignee: assignee}))
	ticket.AssignedTo = assignee
	ticket.Status = domain.TicketStatusAssigned
	return ticket, nil
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}
