package domain

// TicketStatus enumerates lifecycle states for tickets. Any status may move
// to any other; the console enforces no transition rules.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusWaiting    TicketStatus = "WAITING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists the closed status set in board order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusAssigned,
		TicketStatusInProgress,
		TicketStatusWaiting,
		TicketStatusResolved,
		TicketStatusClosed,
	}
}

// Known reports whether the status belongs to the closed set.
func (s TicketStatus) Known() bool {
	for _, candidate := range TicketStatuses() {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Ticket is a support request as exposed by the API.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	AssignedTo  string         `json:"assignedTo,omitempty"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   string         `json:"createdAt"`
}

// Key implements store.Record.
func (t Ticket) Key() string { return t.ID }
