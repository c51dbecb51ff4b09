package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	pg "github.com/lib/pq"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	"topupmart/internal/app/storage"
)

// storage.OrderRepository interface implementation
var _ storage.OrderRepository = (*OrderRepository)(nil)

type OrderRepository struct {
	db *sql.DB
}

func (r *OrderRepository) LoggerComponent() string {
	return "OrderRepository"
}

func NewOrderRepository(db *sql.DB) (*OrderRepository, error) {
	s := &OrderRepository{
		db: db,
	}
	return s, nil
}

// Create implementation of interface storage.OrderRepository
func (r *OrderRepository) Create(ctx context.Context, m *model.Order) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelDefault,
	})
	if err != nil {
		return nil, fmt.Errorf("tx begin: %w", err)
	}

	res, err := r.TxCreate(ctx, tx, m)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("tx create: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit: %w", err)
	}

	return res, nil
}

// TxCreate implementation of interface storage.OrderRepository
func (r *OrderRepository) TxCreate(ctx context.Context, tx *sql.Tx, m *model.Order) (*model.Order, error) {
	if m.UserID == uuid.Nil || m.Product == "" || !m.Amount.IsPositive() {
		return nil, apperr.ErrInvalidInput
	}
	if m.Status == "" {
		m.Status = model.OrderStatusProcessing
	}

	const SQL = `
		INSERT INTO orders (user_id, user_name, product, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
`

	err := tx.QueryRowContext(ctx, SQL, m.UserID, m.UserName, m.Product, m.Amount, m.Status).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if pgErr, ok := err.(*pg.Error); ok {
			if pgerrcode.IsIntegrityConstraintViolation(string(pgErr.Code)) {
				return nil, apperr.ErrConflict
			}
		}

		return nil, fmt.Errorf("insert: %w", err)
	}

	return m, nil
}

// Read implementation of interface storage.OrderRepository
func (r *OrderRepository) Read(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const SQL = `
		SELECT id, user_id, user_name, product, amount, status, created_at
		FROM orders
		WHERE id=$1
`
	m := &model.Order{}

	err := r.db.QueryRowContext(ctx, SQL, id).Scan(&m.ID, &m.UserID, &m.UserName, &m.Product, &m.Amount, &m.Status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select: %w", err)
	}

	return m, nil
}

// All implementation of interface storage.OrderRepository
func (r *OrderRepository) All(ctx context.Context) ([]*model.Order, error) {
	const SQL = `
		SELECT id, user_id, user_name, product, amount, status, created_at
		FROM orders
		ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, SQL)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return r.scanRows(ctx, rows)
}

// AllByUserID implementation of interface storage.OrderRepository
func (r *OrderRepository) AllByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	const SQL = `
		SELECT id, user_id, user_name, product, amount, status, created_at
		FROM orders
		WHERE user_id=$1
		ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, SQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return r.scanRows(ctx, rows)
}

// TxUpdateStatus implementation of interface storage.OrderRepository
func (r *OrderRepository) TxUpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.OrderStatus) error {
	const SQL = `
		UPDATE orders
		SET status=$1
		WHERE id=$2
`

	res, err := tx.ExecContext(ctx, SQL, status, id)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) scanRows(ctx context.Context, rows *sql.Rows) ([]*model.Order, error) {
	l := logger.Ctx(ctx).Component(r)
	defer func() {
		_ = rows.Close()
	}()

	res := make([]*model.Order, 0)

	for rows.Next() {
		m := &model.Order{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.Product, &m.Amount, &m.Status, &m.CreatedAt); err != nil {
			l.Debug().Err(err).Send()
			return nil, fmt.Errorf("scan: %w", err)
		}
		res = append(res, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return res, nil
}
