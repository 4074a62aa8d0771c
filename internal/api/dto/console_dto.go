package dto

import (
	"github.com/spec-kit/nexus-console/internal/domain"
)

// LoginRequest payload for staff login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SendMessageRequest payload for posting a chat line.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// TicketStatusRequest payload.
type TicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest payload. Assignee is a staff display name.
type AssignTicketRequest struct {
	Assignee string `json:"assignee"`
}

// TaskStatusRequest payload.
type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// StaffRoleRequest payload.
type StaffRoleRequest struct {
	Role domain.Role `json:"role"`
}

// MarkReadResponse reports how many messages were marked read.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// StatusResponse acknowledges a command without a record to return.
type StatusResponse struct {
	Status string `json:"status"`
}
