package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/model"
)

// CreateMessage сохраняет новое сообщение.
func (r *PostgresRepository) CreateMessage(ctx context.Context, m *model.Message) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, swap_request_id, content)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, m.SenderID, m.ReceiverID, m.SwapRequestID, m.Content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert message: %w", err)
	}
	return id, nil
}

// MessageFilter описывает выборку сообщений пользователя.
type MessageFilter struct {
	ConversationWith *uuid.UUID
	SwapRequestID    *uuid.UUID
}

// ListMessages возвращает сообщения пользователя в порядке отправки.
func (r *PostgresRepository) ListMessages(ctx context.Context, userID uuid.UUID, f MessageFilter) ([]model.Message, error) {
	query := `SELECT id, sender_id, receiver_id, swap_request_id, content, read, created_at
		 FROM messages
		 WHERE (sender_id = $1 OR receiver_id = $1)`
	args := []any{userID}

	if f.ConversationWith != nil {
		query += ` AND (sender_id = $2 OR receiver_id = $2)`
		args = append(args, *f.ConversationWith)
	}
	if f.SwapRequestID != nil {
		query += fmt.Sprintf(` AND swap_request_id = $%d`, len(args)+1)
		args = append(args, *f.SwapRequestID)
	}

	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var res []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SwapRequestID,
			&m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// MarkConversationRead помечает прочитанными все входящие сообщения
// пользователя от указанного собеседника.
func (r *PostgresRepository) MarkConversationRead(ctx context.Context, userID, fromUserID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE messages SET read = true WHERE receiver_id = $1 AND sender_id = $2 AND read = false`,
		userID, fromUserID,
	)
	if err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	return nil
}
