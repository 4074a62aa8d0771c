package domain

import "time"

// Conversation is a live-chat thread.
type Conversation struct {
	ID           string     `json:"id"`
	Participants []Identity `json:"participants"`
	LastMessage  string     `json:"lastMessage,omitempty"`
	UnreadCount  int        `json:"unreadCount"`
}

// Key implements store.Record.
func (c Conversation) Key() string { return c.ID }

// Title returns the first participant name, which is how the inbox labels a thread.
func (c Conversation) Title() string {
	if len(c.Participants) == 0 {
		return c.ID
	}
	return c.Participants[0].Name
}

// Delivery tracks a locally sent message until the server acknowledges it.
// Messages fetched from the server carry the zero value.
type Delivery string

const (
	DeliveryPending Delivery = "pending"
	DeliverySent    Delivery = "sent"
	DeliveryFailed  Delivery = "failed"
)

// Message is a single chat line.
type Message struct {
	ID        string   `json:"id"`
	ChatID    string   `json:"chatId"`
	SenderID  string   `json:"senderId"`
	Text      string   `json:"text"`
	Timestamp string   `json:"timestamp"`
	IsRead    bool     `json:"isRead"`
	Delivery  Delivery `json:"-"`
}

// Key implements store.Record.
func (m Message) Key() string { return m.ID }

// ConversationRecord is a conversation as the devserver stores it. AgentID is
// the staff member handling the thread; Closed threads drop out of every inbox.
type ConversationRecord struct {
	ID           string
	AgentID      string
	Participants []Identity
	LastMessage  string
	Closed       bool
	CreatedAt    time.Time
}
