package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rewear/rewear/internal/model"
)

const itemColumns = `id, user_id, title, description, category, size, condition, brand, color, tags, point_value, status, available, created_at, updated_at`

func scanItemRows(rows pgx.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Category,
			&it.Size, &it.Condition, &it.Brand, &it.Color, &it.Tags, &it.PointValue,
			&it.Status, &it.Available, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// CreateItem сохраняет новую вещь.
func (r *PostgresRepository) CreateItem(ctx context.Context, item *model.Item) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO items (id, user_id, title, description, category, size, condition, brand, color, tags, point_value, status, available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, item.UserID, item.Title, item.Description, item.Category, item.Size,
		item.Condition, item.Brand, item.Color, item.Tags, item.PointValue,
		string(item.Status), item.Available,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

// GetItemByID возвращает вещь по идентификатору.
func (r *PostgresRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`,
		id,
	)

	var it model.Item
	err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Category,
		&it.Size, &it.Condition, &it.Brand, &it.Color, &it.Tags, &it.PointValue,
		&it.Status, &it.Available, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &it, nil
}

// ListItemsByUser возвращает вещи пользователя, кроме снятых с публикации.
func (r *PostgresRepository) ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM items
		 WHERE user_id = $1 AND status <> $2
		 ORDER BY created_at DESC`,
		userID, string(model.ItemStatusRemoved),
	)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return scanItemRows(rows)
}

// BrowseFilter описывает фильтры каталога вещей.
type BrowseFilter struct {
	Category  string
	Condition string
	Size      string
	Search    string
}

// BrowseItems возвращает одобренные и доступные вещи с учётом фильтров.
func (r *PostgresRepository) BrowseItems(ctx context.Context, f BrowseFilter) ([]model.Item, error) {
	var (
		conds = []string{"status = $1", "available = true"}
		args  = []any{string(model.ItemStatusApproved)}
	)

	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Category != "" {
		conds = append(conds, "category = "+addArg(f.Category))
	}
	if f.Condition != "" {
		conds = append(conds, "condition = "+addArg(f.Condition))
	}
	if f.Size != "" {
		conds = append(conds, "size = "+addArg(f.Size))
	}
	if f.Search != "" {
		p := addArg("%" + f.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+" OR brand ILIKE "+p+")")
	}

	query := `SELECT ` + itemColumns + `
		 FROM items
		 WHERE ` + strings.Join(conds, " AND ") + `
		 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select browse items: %w", err)
	}
	return scanItemRows(rows)
}

// ListPendingItems возвращает вещи, ожидающие модерации.
func (r *PostgresRepository) ListPendingItems(ctx context.Context, limit int) ([]model.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM items
		 WHERE status = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		string(model.ItemStatusPending), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending items: %w", err)
	}
	return scanItemRows(rows)
}

// SetItemModeration выставляет решение модератора по вещи.
func (r *PostgresRepository) SetItemModeration(ctx context.Context, id uuid.UUID, status model.ItemStatus, available bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE items SET status = $2, available = $3, updated_at = now() WHERE id = $1`,
		id, string(status), available,
	)
	if err != nil {
		return fmt.Errorf("update item moderation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// RemoveItem снимает вещь с публикации. Вещь не удаляется физически.
func (r *PostgresRepository) RemoveItem(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE items SET status = $2, available = false, updated_at = now() WHERE id = $1`,
		id, string(model.ItemStatusRemoved),
	)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
