package service

import (
	"context"
	"math"

	"github.com/spec-kit/nexus-console/internal/domain"
	"github.com/spec-kit/nexus-console/internal/repository"
	apperrors "github.com/spec-kit/nexus-console/pkg/util"
)

// DashboardService computes the home view counters from the repositories.
type DashboardService struct {
	repos repository.Repositories
}

// NewDashboardService creates the service.
func NewDashboardService(repos repository.Repositories) *DashboardService {
	return &DashboardService{repos: repos}
}

// Summary counts tickets, open chats, unfinished tasks and online staff.
// Performance is the share of tickets resolved or closed, in percent.
func (s *DashboardService) Summary(ctx context.Context) (domain.DashboardSummary, error) {
	var summary domain.DashboardSummary

	tickets, err := s.repos.Tickets.List(ctx)
	if err != nil {
		return summary, apperrors.MapError(err)
	}
	done := 0
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusResolved, domain.TicketStatusClosed:
			done++
		default:
			summary.OpenTickets++
		}
	}
	summary.TotalTickets = len(tickets)
	if len(tickets) > 0 {
		summary.Performance = int(math.Round(float64(done) * 100 / float64(len(tickets))))
	}

	chats, err := s.repos.Conversations.ListOpen(ctx, repository.ConversationFilter{})
	if err != nil {
		return summary, apperrors.MapError(err)
	}
	summary.ActiveChats = len(chats)

	tasks, err := s.repos.Tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return summary, apperrors.MapError(err)
	}
	for _, t := range tasks {
		if t.Status != domain.TaskStatusDone {
			summary.AssignedTasks++
		}
	}

	staff, err := s.repos.Staff.List(ctx)
	if err != nil {
		return summary, apperrors.MapError(err)
	}
	for _, m := range staff {
		if m.Status == domain.PresenceOnline {
			summary.StaffOnline++
		}
	}
	return summary, nil
}
