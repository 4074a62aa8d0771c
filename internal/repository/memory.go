package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nexus-console/internal/domain"
)

// table is an insertion-ordered map guarded by a mutex. Lookups of unknown
// ids return pgx.ErrNoRows so services treat both backends alike.
type table[T any] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

// Ids are cloned before they become map keys: callers may pass strings that
// alias a reused request buffer.
func (t *table[T]) insert(id string, row T) error {
	id = strings.Clone(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[id]; exists {
		return ErrDuplicate
	}
	t.rows[id] = row
	t.order = append(t.order, id)
	return nil
}

func (t *table[T]) get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, pgx.ErrNoRows
	}
	return row, nil
}

func (t *table[T]) update(id string, fn func(*T)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&row)
	t.rows[strings.Clone(id)] = row
	return nil
}

// updateWhere applies fn to every row matching keep and returns how many changed.
func (t *table[T]) updateWhere(keep func(T) bool, fn func(*T)) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int64
	for _, id := range t.order {
		row := t.rows[id]
		if !keep(row) {
			continue
		}
		fn(&row)
		t.rows[id] = row
		n++
	}
	return n
}

func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

type memoryStaffRepository struct {
	rows *table[domain.StaffAccount]
}

// NewMemoryStaffRepository returns an empty in-memory staff repository.
func NewMemoryStaffRepository() StaffRepository {
	return &memoryStaffRepository{rows: newTable[domain.StaffAccount]()}
}

func (r *memoryStaffRepository) Create(_ context.Context, staff *domain.StaffAccount) error {
	if _, err := r.GetByEmail(context.Background(), staff.Email); err == nil {
		return ErrDuplicate
	}
	row := *staff
	row.Email = strings.ToLower(row.Email)
	return r.rows.insert(row.ID, row)
}

func (r *memoryStaffRepository) GetByID(_ context.Context, id string) (*domain.StaffAccount, error) {
	row, err := r.rows.get(id)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *memoryStaffRepository) GetByEmail(_ context.Context, email string) (*domain.StaffAccount, error) {
	email = strings.ToLower(email)
	matches := r.rows.list(func(s domain.StaffAccount) bool { return s.Email == email })
	if len(matches) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &matches[0], nil
}

func (r *memoryStaffRepository) List(_ context.Context) ([]domain.StaffAccount, error) {
	return r.rows.list(nil), nil
}

func (r *memoryStaffRepository) UpdateRole(_ context.Context, id string, role domain.Role) error {
	return r.rows.update(id, func(s *domain.StaffAccount) { s.Role = role })
}

func (r *memoryStaffRepository) UpdatePresence(_ context.Context, id string, presence domain.Presence) error {
	return r.rows.update(id, func(s *domain.StaffAccount) { s.Status = presence })
}

type memoryTicketRepository struct {
	rows *table[domain.Ticket]
}

// NewMemoryTicketRepository returns an empty in-memory ticket repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{rows: newTable[domain.Ticket]()}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.CreatedAt == "" {
		ticket.CreatedAt = formatTime(time.Now())
	}
	return r.rows.insert(ticket.ID, *ticket)
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	row, err := r.rows.get(id)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *memoryTicketRepository) List(_ context.Context) ([]domain.Ticket, error) {
	return r.rows.list(nil), nil
}

func (r *memoryTicketRepository) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) error {
	return r.rows.update(id, func(t *domain.Ticket) { t.Status = status })
}

func (r *memoryTicketRepository) Assign(_ context.Context, id, assignee string, status domain.TicketStatus) error {
	return r.rows.update(id, func(t *domain.Ticket) {
		t.AssignedTo = assignee
		t.Status = status
	})
}

type memoryTaskRepository struct {
	rows *table[domain.Task]
}

// NewMemoryTaskRepository returns an empty in-memory task repository.
func NewMemoryTaskRepository() TaskRepository {
	return &memoryTaskRepository{rows: newTable[domain.Task]()}
}

func (r *memoryTaskRepository) Create(_ context.Context, task *domain.Task) error {
	if task.CreatedAt == "" {
		task.CreatedAt = formatTime(time.Now())
	}
	return r.rows.insert(task.ID, *task)
}

func (r *memoryTaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	row, err := r.rows.get(id)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *memoryTaskRepository) List(_ context.Context, filter TaskFilter) ([]domain.Task, error) {
	if filter.AssignedTo == nil {
		return r.rows.list(nil), nil
	}
	assignee := *filter.AssignedTo
	return r.rows.list(func(t domain.Task) bool { return t.AssignedTo == assignee }), nil
}

func (r *memoryTaskRepository) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) error {
	return r.rows.update(id, func(t *domain.Task) { t.Status = status })
}

type memoryConversationRepository struct {
	rows *table[domain.ConversationRecord]
}

// NewMemoryConversationRepository returns an empty in-memory conversation repository.
func NewMemoryConversationRepository() ConversationRepository {
	return &memoryConversationRepository{rows: newTable[domain.ConversationRecord]()}
}

func cloneConversation(c domain.ConversationRecord) domain.ConversationRecord {
	c.Participants = append([]domain.Identity(nil), c.Participants...)
	return c
}

func (r *memoryConversationRepository) Create(_ context.Context, conv *domain.ConversationRecord) error {
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	return r.rows.insert(conv.ID, cloneConversation(*conv))
}

func (r *memoryConversationRepository) GetByID(_ context.Context, id string) (*domain.ConversationRecord, error) {
	row, err := r.rows.get(id)
	if err != nil {
		return nil, err
	}
	row = cloneConversation(row)
	return &row, nil
}

func (r *memoryConversationRepository) ListOpen(_ context.Context, filter ConversationFilter) ([]domain.ConversationRecord, error) {
	rows := r.rows.list(func(c domain.ConversationRecord) bool {
		if c.Closed {
			return false
		}
		return filter.AgentID == nil || c.AgentID == *filter.AgentID
	})
	for i := range rows {
		rows[i] = cloneConversation(rows[i])
	}
	return rows, nil
}

func (r *memoryConversationRepository) SetLastMessage(_ context.Context, id, text string) error {
	return r.rows.update(id, func(c *domain.ConversationRecord) { c.LastMessage = text })
}

func (r *memoryConversationRepository) Close(_ context.Context, id string) error {
	return r.rows.update(id, func(c *domain.ConversationRecord) { c.Closed = true })
}

type memoryMessageRepository struct {
	rows *table[domain.Message]
}

// NewMemoryMessageRepository returns an empty in-memory message repository.
func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{rows: newTable[domain.Message]()}
}

func (r *memoryMessageRepository) Create(_ context.Context, msg *domain.Message) error {
	if msg.Timestamp == "" {
		msg.Timestamp = formatTime(time.Now())
	}
	return r.rows.insert(msg.ID, *msg)
}

func (r *memoryMessageRepository) ListByChat(_ context.Context, chatID string) ([]domain.Message, error) {
	return r.rows.list(func(m domain.Message) bool { return m.ChatID == chatID }), nil
}

func unreadBy(chatID, readerID string) func(domain.Message) bool {
	return func(m domain.Message) bool {
		return m.ChatID == chatID && m.SenderID != readerID && !m.IsRead
	}
}

func (r *memoryMessageRepository) MarkRead(_ context.Context, chatID, readerID string) (int64, error) {
	return r.rows.updateWhere(unreadBy(chatID, readerID), func(m *domain.Message) { m.IsRead = true }), nil
}

func (r *memoryMessageRepository) CountUnread(_ context.Context, chatID, readerID string) (int, error) {
	return len(r.rows.list(unreadBy(chatID, readerID))), nil
}
