package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	// Console side: outcomes of optimistic and remote-first mutations.
	EventOperationConfirmed EventType = "operation.confirmed"
	EventOperationFailed    EventType = "operation.failed"
	EventSessionChanged     EventType = "session.changed"

	// Devserver side: state changes applied by services.
	EventTicketStatusChanged EventType = "ticket.status_changed"
	EventTicketAssigned      EventType = "ticket.assigned"
	EventTaskStatusChanged   EventType = "task.status_changed"
	EventMessageSent         EventType = "chat.message_sent"
	EventConversationClosed  EventType = "chat.closed"
	EventStaffRoleChanged    EventType = "staff.role_changed"
)

// Event is one published occurrence. Subject is the id of the record the
// event concerns (operation, ticket, task, conversation or staff member).
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Subject   string    `json:"subject"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subject, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// OperationPayload describes a console mutation outcome.
type OperationPayload struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Reason   string `json:"reason,omitempty"`
}

// SessionPayload carries the identity after a login or logout.
type SessionPayload struct {
	Identity *domain.Identity `json:"identity,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Assignee string `json:"assignee"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID   string `json:"message_id"`
	BodyPreview string `json:"body_preview"`
}

// StaffRoleChangedPayload payload.
type StaffRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}
