package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nexus-console/internal/domain"
)

type conversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository instantiates repository.
func NewConversationRepository(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{pool: pool}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.ConversationRecord) error {
	participants, err := json.Marshal(conv.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	const query = `
        INSERT INTO conversations (id, agent_id, participants, last_message, closed)
        VALUES ($1,$2,$3::jsonb,$4,$5)
        RETURNING created_at`
	if err := r.pool.QueryRow(ctx, query,
		conv.ID,
		conv.AgentID,
		string(participants),
		conv.LastMessage,
		conv.Closed,
	).Scan(&conv.CreatedAt); err != nil {
		return translate(err)
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.ConversationRecord, error) {
	const query = `
        SELECT id, agent_id, participants, last_message, closed, created_at
        FROM conversations WHERE id=$1`
	var (
		conv         domain.ConversationRecord
		participants []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.AgentID,
		&participants,
		&conv.LastMessage,
		&conv.Closed,
		&conv.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(participants, &conv.Participants); err != nil {
		return nil, fmt.Errorf("decode participants of %s: %w", id, err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListOpen(ctx context.Context, filter ConversationFilter) ([]domain.ConversationRecord, error) {
	query := `
        SELECT id, agent_id, participants, last_message, closed, created_at
        FROM conversations WHERE NOT closed`
	args := []any{}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		query += fmt.Sprintf(" AND agent_id=$%d", len(args))
	}
	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ConversationRecord
	for rows.Next() {
		var (
			conv         domain.ConversationRecord
			participants []byte
		)
		if err := rows.Scan(
			&conv.ID,
			&conv.AgentID,
			&participants,
			&conv.LastMessage,
			&conv.Closed,
			&conv.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(participants, &conv.Participants); err != nil {
			return nil, fmt.Errorf("decode participants of %s: %w", conv.ID, err)
		}
		result = append(result, conv)
	}
	return result, rows.Err()
}

func (r *conversationRepository) SetLastMessage(ctx context.Context, id, text string) error {
	return execOne(ctx, r.pool, `UPDATE conversations SET last_message=$1 WHERE id=$2`, text, id)
}

func (r *conversationRepository) Close(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `UPDATE conversations SET closed=TRUE WHERE id=$1`, id)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO chat_messages (id, chat_id, sender_id, body, is_read)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		msg.ID,
		msg.ChatID,
		msg.SenderID,
		msg.Text,
		msg.IsRead,
	).Scan(&createdAt); err != nil {
		return translate(err)
	}
	msg.Timestamp = formatTime(createdAt)
	return nil
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	const query = `
        SELECT id, chat_id, sender_id, body, is_read, created_at
        FROM chat_messages WHERE chat_id=$1
        ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var (
			msg       domain.Message
			createdAt time.Time
		)
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Text, &msg.IsRead, &createdAt); err != nil {
			return nil, err
		}
		msg.Timestamp = formatTime(createdAt)
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE chat_messages SET is_read=TRUE WHERE chat_id=$1 AND sender_id<>$2 AND NOT is_read`,
		chatID, readerID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *messageRepository) CountUnread(ctx context.Context, chatID, readerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE chat_id=$1 AND sender_id<>$2 AND NOT is_read`,
		chatID, readerID).Scan(&count)
	return count, err
}
