package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// Seed fills empty repositories with the demo records the console also uses
// as its offline fallback. Every seeded staff account gets passwordHash.
// Repositories that already hold staff are left alone.
func Seed(ctx context.Context, repos Repositories, passwordHash string) (bool, error) {
	existing, err := repos.Staff.List(ctx)
	if err != nil {
		return false, fmt.Errorf("inspect staff: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, s := range seedStaff() {
		account := domain.StaffAccount{Identity: s, PasswordHash: passwordHash}
		if err := repos.Staff.Create(ctx, &account); err != nil {
			return false, fmt.Errorf("seed staff %s: %w", s.ID, err)
		}
	}
	for _, t := range seedTickets() {
		if err := repos.Tickets.Create(ctx, &t); err != nil {
			return false, fmt.Errorf("seed ticket %s: %w", t.ID, err)
		}
	}
	for _, t := range seedTasks() {
		if err := repos.Tasks.Create(ctx, &t); err != nil {
			return false, fmt.Errorf("seed task %s: %w", t.ID, err)
		}
	}
	for _, c := range seedConversations() {
		if err := repos.Conversations.Create(ctx, &c); err != nil {
			return false, fmt.Errorf("seed conversation %s: %w", c.ID, err)
		}
	}
	for _, m := range seedMessages() {
		if err := repos.Messages.Create(ctx, &m); err != nil {
			return false, fmt.Errorf("seed message %s: %w", m.ID, err)
		}
	}
	return true, nil
}

func seedStaff() []domain.Identity {
	return []domain.Identity{
		{ID: "1", Name: "Admin One", Email: "admin@nexus.com", Role: domain.RoleAdmin, Status: domain.PresenceOnline},
		{ID: "2", Name: "Agent Smith", Email: "smith@nexus.com", Role: domain.RoleAgent, Status: domain.PresenceBusy},
		{ID: "3", Name: "John Dev", Email: "john@nexus.com", Role: domain.RoleDeveloper, Status: domain.PresenceOffline},
		{ID: "4", Name: "Manager Sarah", Email: "sarah@nexus.com", Role: domain.RoleTaskAssigner, Status: domain.PresenceOnline},
		{ID: "5", Name: "Sales Bea", Email: "bea@nexus.com", Role: domain.RoleSales, Status: domain.PresenceOnline},
		{ID: "6", Name: "Director Mona", Email: "mona@nexus.com", Role: domain.RoleManagement, Status: domain.PresenceOffline},
	}
}

func seedTickets() []domain.Ticket {
	return []domain.Ticket{
		{ID: "1", Title: "Payment Gateway Error", Description: "User unable to pay", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityHigh, CreatedBy: "Agent Smith"},
		{ID: "2", Title: "Slow Load Times", Description: "Dashboard taking 5s+", Status: domain.TicketStatusAssigned, Priority: domain.TicketPriorityMedium, AssignedTo: "John Dev", CreatedBy: "Manager Sarah"},
		{ID: "3", Title: "New Feature Request", Description: "Dark mode toggle", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityLow, AssignedTo: "John Dev", CreatedBy: "Sales Bea"},
	}
}

func seedTasks() []domain.Task {
	return []domain.Task{
		{ID: "t1", Title: "Fix Header Blur", Description: "Blur not working on Safari", Status: domain.TaskStatusTodo, AssignedBy: "Manager Sarah", AssignedTo: "John Dev"},
		{ID: "t2", Title: "Update API Docs", Description: "Document new chat endpoints", Status: domain.TaskStatusDoing, AssignedBy: "Admin One", AssignedTo: "John Dev"},
		{ID: "t3", Title: "Design Refresh", Description: "Glassmorphism implementation", Status: domain.TaskStatusDone, AssignedBy: "Director Mona", AssignedTo: "Manager Sarah"},
	}
}

func seedConversations() []domain.ConversationRecord {
	return []domain.ConversationRecord{
		{ID: "1", AgentID: "2", Participants: []domain.Identity{{ID: "customer-alex", Name: "Alex"}}, LastMessage: "Hey, I need help!"},
		{ID: "2", AgentID: "2", Participants: []domain.Identity{{ID: "customer-sarah", Name: "Sarah"}}, LastMessage: "Problem resolved, thanks."},
	}
}

func seedMessages() []domain.Message {
	return []domain.Message{
		{ID: "m1", ChatID: "1", SenderID: "customer-alex", Text: "Hello! I am having issues with my order."},
		{ID: "m2", ChatID: "1", SenderID: "customer-alex", Text: "Hey, I need help!"},
		{ID: "m3", ChatID: "2", SenderID: "2", Text: "Hi! Let me look into that for you.", IsRead: true},
		{ID: "m4", ChatID: "2", SenderID: "customer-sarah", Text: "Problem resolved, thanks.", IsRead: true},
	}
}
