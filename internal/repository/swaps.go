package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rewear/rewear/internal/model"
)

const swapColumns = `id, sender_id, receiver_id, sender_item_id, receiver_item_id, type, status, message, created_at, updated_at`

func scanSwapRows(rows pgx.Rows) ([]model.SwapRequest, error) {
	defer rows.Close()

	var swaps []model.SwapRequest
	for rows.Next() {
		var s model.SwapRequest
		if err := rows.Scan(&s.ID, &s.SenderID, &s.ReceiverID, &s.SenderItemID, &s.ReceiverItemID,
			&s.Type, &s.Status, &s.Message, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		swaps = append(swaps, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return swaps, nil
}

// CreateSwapRequest сохраняет новую заявку на обмен в статусе PENDING.
// Повторная ожидающая заявка по той же тройке (отправитель, получатель, вещь)
// отклоняется частичным уникальным индексом.
func (r *PostgresRepository) CreateSwapRequest(ctx context.Context, s *model.SwapRequest) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO swap_requests (id, sender_id, receiver_id, sender_item_id, receiver_item_id, type, status, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, s.SenderID, s.ReceiverID, s.SenderItemID, s.ReceiverItemID,
		string(s.Type), string(model.SwapStatusPending), s.Message,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, ErrDuplicateSwapRequest
		}
		return uuid.Nil, fmt.Errorf("insert swap request: %w", err)
	}
	return id, nil
}

// GetSwapRequest возвращает заявку на обмен по идентификатору.
func (r *PostgresRepository) GetSwapRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+swapColumns+` FROM swap_requests WHERE id = $1`,
		id,
	)

	var s model.SwapRequest
	err := row.Scan(&s.ID, &s.SenderID, &s.ReceiverID, &s.SenderItemID, &s.ReceiverItemID,
		&s.Type, &s.Status, &s.Message, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("get swap request: %w", err)
	}

	return &s, nil
}

// ListSwapsByUser возвращает входящие и исходящие заявки пользователя.
func (r *PostgresRepository) ListSwapsByUser(ctx context.Context, userID uuid.UUID) ([]model.SwapRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+swapColumns+`
		 FROM swap_requests
		 WHERE sender_id = $1 OR receiver_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select swaps: %w", err)
	}
	return scanSwapRows(rows)
}

// ListAllSwaps возвращает все заявки для панели администратора.
func (r *PostgresRepository) ListAllSwaps(ctx context.Context) ([]model.SwapRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+swapColumns+`
		 FROM swap_requests
		 ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select all swaps: %w", err)
	}
	return scanSwapRows(rows)
}

// TransitionSwap переводит заявку из статуса from в статус to одним
// охраняемым обновлением. Если строка существует, но статус уже другой,
// возвращается ErrInvalidTransition: конкурирующий переход успел раньше.
func (r *PostgresRepository) TransitionSwap(ctx context.Context, id uuid.UUID, from, to model.SwapStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE swap_requests SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("transition swap: %w", err)
	}

	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetSwapRequest(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// CompleteSwap выполняет расчёт по принятой заявке одной транзакцией:
// перевод баллов (для POINTS), пометка вещей как обменянных и перевод
// заявки в статус COMPLETED. Либо применяется всё, либо ничего.
func (r *PostgresRepository) CompleteSwap(ctx context.Context, id uuid.UUID) error {
	return r.withRetry(ctx, func() error {
		return r.completeSwap(ctx, id)
	})
}

func (r *PostgresRepository) completeSwap(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку заявки: повторный complete по той же заявке
	// дождётся коммита и увидит статус COMPLETED.
	var s model.SwapRequest
	err = tx.QueryRow(ctx,
		`SELECT sender_id, receiver_id, sender_item_id, receiver_item_id, type, status
		 FROM swap_requests
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	).Scan(&s.SenderID, &s.ReceiverID, &s.SenderItemID, &s.ReceiverItemID, &s.Type, &s.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSwapNotFound
		}
		return fmt.Errorf("lock swap request: %w", err)
	}

	if s.Status != model.SwapStatusAccepted {
		return ErrInvalidTransition
	}

	if s.Type == model.SwapTypePoints {
		var pointValue int64
		err = tx.QueryRow(ctx,
			`SELECT point_value FROM items WHERE id = $1`,
			s.ReceiverItemID,
		).Scan(&pointValue)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("get item point value: %w", err)
		}

		if err := transferPointsTx(ctx, tx, s.SenderID, s.ReceiverID, pointValue, s.ReceiverItemID); err != nil {
			return err
		}
	}

	if err := markItemConsumedTx(ctx, tx, s.ReceiverItemID); err != nil {
		return err
	}
	if s.SenderItemID != nil {
		if err := markItemConsumedTx(ctx, tx, *s.SenderItemID); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE swap_requests SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(model.SwapStatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("update swap status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// transferPointsTx переводит amount баллов от плательщика к получателю и
// добавляет две записи аудита. Баланс плательщика перепроверяется под
// блокировкой: проверки на этапе создания заявки носят справочный характер.
func transferPointsTx(ctx context.Context, tx pgx.Tx, from, to uuid.UUID, amount int64, itemID uuid.UUID) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}
	if from == to {
		return fmt.Errorf("transfer to the same user %s", from)
	}

	// Строки пользователей блокируются в порядке возрастания id,
	// иначе встречные расчёты могут взаимно заблокироваться.
	first, second := from, to
	if bytes.Compare(to[:], from[:]) < 0 {
		first, second = to, from
	}

	balances := make(map[uuid.UUID]int64, 2)
	for _, userID := range []uuid.UUID{first, second} {
		var points int64
		err := tx.QueryRow(ctx,
			`SELECT points FROM users WHERE id = $1 FOR UPDATE`,
			userID,
		).Scan(&points)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user %s: %w", userID, err)
		}
		balances[userID] = points
	}

	if balances[from] < amount {
		return ErrInsufficientPoints
	}

	_, err := tx.Exec(ctx,
		`UPDATE users SET points = points - $2, updated_at = now() WHERE id = $1`,
		from, amount,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return ErrInsufficientPoints
		}
		return fmt.Errorf("debit user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET points = points + $2, updated_at = now() WHERE id = $1`,
		to, amount,
	)
	if err != nil {
		return fmt.Errorf("credit user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO point_transactions (id, user_id, item_id, amount, type, description)
		 VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)`,
		uuid.New(), from, itemID, -amount, string(model.PointTxSpentRedemption), "swap settlement",
		uuid.New(), to, itemID, amount, string(model.PointTxEarnedSwap), "swap settlement",
	)
	if err != nil {
		return fmt.Errorf("insert point transactions: %w", err)
	}

	return nil
}

// markItemConsumedTx помечает вещь как обменянную. Повторный вызов для уже
// обменянной вещи не является ошибкой: обе стороны прямого обмена могут
// пройти через этот путь для одной и той же вещи.
func markItemConsumedTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE items SET status = $2, available = false, updated_at = now() WHERE id = $1`,
		itemID, string(model.ItemStatusSold),
	)
	if err != nil {
		return fmt.Errorf("mark item consumed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
