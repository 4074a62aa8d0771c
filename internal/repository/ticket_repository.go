package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nexus-console/internal/domain"
)

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, assigned_to, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.CreatedBy,
	).Scan(&createdAt)
	if err != nil {
		return translate(err)
	}
	ticket.CreatedAt = formatTime(createdAt)
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, priority, assigned_to, created_by, created_at
        FROM tickets WHERE id=$1`
	var (
		ticket    domain.Ticket
		createdAt time.Time
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&createdAt,
	); err != nil {
		return nil, err
	}
	ticket.CreatedAt = formatTime(createdAt)
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, priority, assigned_to, created_by, created_at
        FROM tickets ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket    domain.Ticket
			createdAt time.Time
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.AssignedTo,
			&ticket.CreatedBy,
			&createdAt,
		); err != nil {
			return nil, err
		}
		ticket.CreatedAt = formatTime(createdAt)
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return execOne(ctx, r.pool, `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

func (r *ticketRepository) Assign(ctx context.Context, id, assignee string, status domain.TicketStatus) error {
	return execOne(ctx, r.pool,
		`UPDATE tickets SET assigned_to=$1, status=$2, updated_at=NOW() WHERE id=$3`,
		assignee, status, id)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
