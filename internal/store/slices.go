package store

import (
	"sync"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// ChatSlice holds the inbox: conversations, the open conversation and its messages.
type ChatSlice struct {
	Conversations *Slice[domain.Conversation]
	Messages      *Slice[domain.Message]

	mu       sync.RWMutex
	activeID string
}

// NewChatSlice returns an empty inbox.
func NewChatSlice() *ChatSlice {
	return &ChatSlice{
		Conversations: NewSlice[domain.Conversation](),
		Messages:      NewSlice[domain.Message](),
	}
}

// SetActive opens conversation id; an empty id closes the current one.
// Switching conversation drops the previous message list.
func (c *ChatSlice) SetActive(id string) {
	c.mu.Lock()
	changed := c.activeID != id
	c.activeID = id
	c.mu.Unlock()
	if changed {
		c.Messages.Reset()
	}
}

// Active returns the open conversation id, or "".
func (c *ChatSlice) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID
}

// MarkDelivery updates the delivery state of one message.
func (c *ChatSlice) MarkDelivery(messageID string, d domain.Delivery) bool {
	return c.Messages.PatchByID(messageID, func(m *domain.Message) { m.Delivery = d })
}

// ZeroUnread clears a conversation's unread counter.
func (c *ChatSlice) ZeroUnread(conversationID string) bool {
	return c.Conversations.PatchByID(conversationID, func(conv *domain.Conversation) { conv.UnreadCount = 0 })
}

// Reset empties the inbox.
func (c *ChatSlice) Reset() {
	c.SetActive("")
	c.Conversations.Reset()
	c.Messages.Reset()
}

// TicketSlice holds the ticket board and the ticket open in the detail pane.
type TicketSlice struct {
	*Slice[domain.Ticket]

	mu         sync.RWMutex
	selectedID string
}

// NewTicketSlice returns an empty board.
func NewTicketSlice() *TicketSlice {
	return &TicketSlice{Slice: NewSlice[domain.Ticket]()}
}

// PatchStatus changes only the status of ticket id.
func (t *TicketSlice) PatchStatus(id string, status domain.TicketStatus) bool {
	return t.PatchByID(id, func(tk *domain.Ticket) { tk.Status = status })
}

// PatchAssignee changes only the assignee of ticket id.
func (t *TicketSlice) PatchAssignee(id, assignee string) bool {
	return t.PatchByID(id, func(tk *domain.Ticket) { tk.AssignedTo = assignee })
}

// Select marks ticket id as the one being viewed.
func (t *TicketSlice) Select(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selectedID = id
}

// Selected returns the viewed ticket, if it is still on the board.
func (t *TicketSlice) Selected() (domain.Ticket, bool) {
	t.mu.RLock()
	id := t.selectedID
	t.mu.RUnlock()
	if id == "" {
		return domain.Ticket{}, false
	}
	return t.Get(id)
}

// Reset empties the board.
func (t *TicketSlice) Reset() {
	t.Select("")
	t.Slice.Reset()
}

// TaskSlice holds the current identity's tasks.
type TaskSlice struct {
	*Slice[domain.Task]
}

// NewTaskSlice returns an empty task board.
func NewTaskSlice() *TaskSlice {
	return &TaskSlice{Slice: NewSlice[domain.Task]()}
}

// PatchStatus sets the status of task id and returns the previous one.
func (t *TaskSlice) PatchStatus(id string, status domain.TaskStatus) (previous domain.TaskStatus, ok bool) {
	ok = t.PatchByID(id, func(task *domain.Task) {
		previous = task.Status
		task.Status = status
	})
	return previous, ok
}

// SwapStatus sets the status to next only while it is still expected.
func (t *TaskSlice) SwapStatus(id string, expected, next domain.TaskStatus) bool {
	swapped := false
	t.PatchByID(id, func(task *domain.Task) {
		if task.Status == expected {
			task.Status = next
			swapped = true
		}
	})
	return swapped
}

// StaffSlice holds the staff roster.
type StaffSlice struct {
	*Slice[domain.Identity]
}

// NewStaffSlice returns an empty roster.
func NewStaffSlice() *StaffSlice {
	return &StaffSlice{Slice: NewSlice[domain.Identity]()}
}

// PatchRole changes only the role of staff member id.
func (s *StaffSlice) PatchRole(id string, role domain.Role) bool {
	return s.PatchByID(id, func(m *domain.Identity) { m.Role = role })
}
