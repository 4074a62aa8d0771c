package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nexus-console/internal/domain"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (id, title, description, status, assigned_to, assigned_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.AssignedTo,
		task.AssignedBy,
	).Scan(&createdAt)
	if err != nil {
		return translate(err)
	}
	task.CreatedAt = formatTime(createdAt)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, title, description, status, assigned_to, assigned_by, created_at
        FROM tasks WHERE id=$1`
	var (
		task      domain.Task
		createdAt time.Time
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.AssignedTo,
		&task.AssignedBy,
		&createdAt,
	); err != nil {
		return nil, err
	}
	task.CreatedAt = formatTime(createdAt)
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	query := `
        SELECT id, title, description, status, assigned_to, assigned_by, created_at
        FROM tasks`
	args := []any{}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += fmt.Sprintf(" WHERE assigned_to=$%d", len(args))
	}
	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var (
			task      domain.Task
			createdAt time.Time
		)
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.AssignedTo,
			&task.AssignedBy,
			&createdAt,
		); err != nil {
			return nil, err
		}
		task.CreatedAt = formatTime(createdAt)
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	return execOne(ctx, r.pool, `UPDATE tasks SET status=$1 WHERE id=$2`, status, id)
}
