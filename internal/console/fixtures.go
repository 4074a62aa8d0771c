package console

import (
	"time"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// Fallback records shown when the API cannot be reached. They are data only;
// nothing reads meaning into the values.

func fixtureDashboard() domain.DashboardSummary {
	return domain.DashboardSummary{
		TotalTickets:  128,
		OpenTickets:   12,
		ActiveChats:   5,
		AssignedTasks: 8,
		StaffOnline:   14,
		Performance:   92,
	}
}

func fixtureConversations() []domain.Conversation {
	return []domain.Conversation{
		{ID: "1", Participants: []domain.Identity{{Name: "Alex"}}, LastMessage: "Hey, I need help!", UnreadCount: 2},
		{ID: "2", Participants: []domain.Identity{{Name: "Sarah"}}, LastMessage: "Problem resolved, thanks.", UnreadCount: 0},
	}
}

func fixtureMessages(chatID, agentID string) []domain.Message {
	now := time.Now().UTC().Format(time.RFC3339)
	return []domain.Message{
		{ID: "m1", ChatID: chatID, SenderID: "customer", Text: "Hello! I am having issues with my order.", Timestamp: now, IsRead: true},
		{ID: "m2", ChatID: chatID, SenderID: agentID, Text: "Hi! Let me look into that for you.", Timestamp: now, IsRead: true},
	}
}

func fixtureTickets() []domain.Ticket {
	now := time.Now().UTC().Format(time.RFC3339)
	return []domain.Ticket{
		{ID: "1", Title: "Payment Gateway Error", Description: "User unable to pay", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityHigh, CreatedBy: "Agent 1", CreatedAt: now},
		{ID: "2", Title: "Slow Load Times", Description: "Dashboard taking 5s+", Status: domain.TicketStatusAssigned, Priority: domain.TicketPriorityMedium, AssignedTo: "Dev John", CreatedBy: "Manager A", CreatedAt: now},
		{ID: "3", Title: "New Feature Request", Description: "Dark mode toggle", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityLow, AssignedTo: "Dev Sarah", CreatedBy: "Sales B", CreatedAt: now},
	}
}

func fixtureTasks() []domain.Task {
	return []domain.Task{
		{ID: "t1", Title: "Fix Header Blur", Description: "Blur not working on Safari", Status: domain.TaskStatusTodo, AssignedBy: "Manager X", AssignedTo: "Me"},
		{ID: "t2", Title: "Update API Docs", Description: "Document new chat endpoints", Status: domain.TaskStatusDoing, AssignedBy: "Admin", AssignedTo: "Me"},
		{ID: "t3", Title: "Design Refresh", Description: "Glassmorphism implementation", Status: domain.TaskStatusDone, AssignedBy: "Manager Y", AssignedTo: "Me"},
	}
}

func fixtureStaff() []domain.Identity {
	return []domain.Identity{
		{ID: "1", Name: "Admin One", Email: "admin@nexus.com", Role: domain.RoleAdmin, Status: domain.PresenceOnline},
		{ID: "2", Name: "Agent Smith", Email: "smith@nexus.com", Role: domain.RoleAgent, Status: domain.PresenceBusy},
		{ID: "3", Name: "John Dev", Email: "john@nexus.com", Role: domain.RoleDeveloper, Status: domain.PresenceOffline},
		{ID: "4", Name: "Manager Sarah", Email: "sarah@nexus.com", Role: domain.RoleTaskAssigner, Status: domain.PresenceOnline},
	}
}
