package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// ErrDuplicate is returned when a record with the same id or unique key
// already exists.
var ErrDuplicate = errors.New("duplicate key")

// StaffRepository handles persistence for staff accounts.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffAccount) error
	GetByID(ctx context.Context, id string) (*domain.StaffAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffAccount, error)
	List(ctx context.Context) ([]domain.StaffAccount, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdatePresence(ctx context.Context, id string, presence domain.Presence) error
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	Assign(ctx context.Context, id, assignee string, status domain.TicketStatus) error
}

// TaskFilter narrows task listings. A nil AssignedTo lists every task.
type TaskFilter struct {
	AssignedTo *string
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error
}

// ConversationFilter narrows conversation listings. A nil AgentID lists
// every open conversation.
type ConversationFilter struct {
	AgentID *string
}

// ConversationRepository persists live-chat threads.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.ConversationRecord) error
	GetByID(ctx context.Context, id string) (*domain.ConversationRecord, error)
	ListOpen(ctx context.Context, filter ConversationFilter) ([]domain.ConversationRecord, error)
	SetLastMessage(ctx context.Context, id, text string) error
	Close(ctx context.Context, id string) error
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, chatID, readerID string) (int64, error)
	CountUnread(ctx context.Context, chatID, readerID string) (int, error)
}

// Repositories bundles every devserver repository.
type Repositories struct {
	Staff         StaffRepository
	Tickets       TicketRepository
	Tasks         TaskRepository
	Conversations ConversationRepository
	Messages      MessageRepository
}

// NewPostgresRepositories builds pgx-backed repositories over pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Staff:         NewStaffRepository(pool),
		Tickets:       NewTicketRepository(pool),
		Tasks:         NewTaskRepository(pool),
		Conversations: NewConversationRepository(pool),
		Messages:      NewMessageRepository(pool),
	}
}

// NewMemoryRepositories builds empty in-memory repositories.
func NewMemoryRepositories() Repositories {
	return Repositories{
		Staff:         NewMemoryStaffRepository(),
		Tickets:       NewMemoryTicketRepository(),
		Tasks:         NewMemoryTaskRepository(),
		Conversations: NewMemoryConversationRepository(),
		Messages:      NewMemoryMessageRepository(),
	}
}
