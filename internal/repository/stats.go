package repository

import (
	"context"
	"fmt"

	"github.com/rewear/rewear/internal/model"
)

// GetAdminStats возвращает агрегированные счётчики для панели администратора.
func (r *PostgresRepository) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	var stats model.AdminStats
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM items WHERE status = 'APPROVED'),
			(SELECT COUNT(*) FROM items WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM swap_requests WHERE status IN ('PENDING', 'ACCEPTED')),
			(SELECT COUNT(*) FROM swap_requests WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM items WHERE status = 'REJECTED')`,
	).Scan(&stats.TotalUsers, &stats.TotalItems, &stats.PendingItems,
		&stats.ActiveSwaps, &stats.CompletedSwaps, &stats.RejectedItems)
	if err != nil {
		return nil, fmt.Errorf("select admin stats: %w", err)
	}
	return &stats, nil
}
