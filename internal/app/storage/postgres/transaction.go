package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	pg "github.com/lib/pq"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	"topupmart/internal/app/storage"
)

// storage.TransactionRepository interface implementation
var _ storage.TransactionRepository = (*TransactionRepository)(nil)

type TransactionRepository struct {
	db *sql.DB
}

func (r *TransactionRepository) LoggerComponent() string {
	return "TransactionRepository"
}

func NewTransactionRepository(db *sql.DB) (*TransactionRepository, error) {
	s := &TransactionRepository{
		db: db,
	}
	return s, nil
}

const transactionColumns = `id, user_id, user_name, type, amount, status, description, tran_id, gateway_name, created_at`

// Create implementation of interface storage.TransactionRepository
func (r *TransactionRepository) Create(ctx context.Context, m *model.Transaction) (*model.Transaction, error) {
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

// TxCreate implementation of interface storage.TransactionRepository
func (r *TransactionRepository) TxCreate(ctx context.Context, tx *sql.Tx, m *model.Transaction) (*model.Transaction, error) {
	if m.UserID == uuid.Nil || !m.Amount.IsPositive() {
		return nil, apperr.ErrInvalidInput
	}
	switch m.Type {
	case model.TransactionTypeTopUp:
		if m.Status == "" {
			return nil, apperr.ErrInvalidInput
		}
	case model.TransactionTypePurchase:
		// purchases are final on append and carry no status
		if m.Status != "" {
			return nil, apperr.ErrInvalidInput
		}
	default:
		return nil, apperr.ErrInvalidInput
	}

	const SQL = `
		INSERT INTO transactions (user_id, user_name, type, amount, status, description, tran_id, gateway_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
`

	err := tx.QueryRowContext(ctx, SQL,
		m.UserID, m.UserName, m.Type, m.Amount,
		nullString(string(m.Status)), m.Description, nullString(m.TranID), m.GatewayName,
	).Scan(&m.ID, &m.CreatedAt)
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

// Read implementation of interface storage.TransactionRepository
func (r *TransactionRepository) Read(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id=$1
`
	return r.scanRow(r.db.QueryRowContext(ctx, SQL, id))
}

// ReadByTranID implementation of interface storage.TransactionRepository
func (r *TransactionRepository) ReadByTranID(ctx context.Context, tranID string) (*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tran_id=$1
`
	return r.scanRow(r.db.QueryRowContext(ctx, SQL, tranID))
}

// All implementation of interface storage.TransactionRepository
func (r *TransactionRepository) All(ctx context.Context) ([]*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, SQL)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return r.scanRows(ctx, rows)
}

// AllByUserID implementation of interface storage.TransactionRepository
func (r *TransactionRepository) AllByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id=$1
		ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, SQL, userID)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return r.scanRows(ctx, rows)
}

// SettleByTranID implementation of interface storage.TransactionRepository.
// The WHERE clause on the current status makes this a compare-and-swap: of two
// racing settlements for the same reference at most one matches a row.
func (r *TransactionRepository) SettleByTranID(ctx context.Context, tranID string, from, to model.TransactionStatus, description string) error {
	const SQL = `
		UPDATE transactions
		SET status=$1, description=COALESCE(NULLIF($2, ''), description)
		WHERE tran_id=$3 AND type=$4 AND status=$5
`

	res, err := r.db.ExecContext(ctx, SQL, to, description, tranID, model.TransactionTypeTopUp, from)
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

// SettleByID implementation of interface storage.TransactionRepository
func (r *TransactionRepository) SettleByID(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus) error {
	const SQL = `
		UPDATE transactions
		SET status=$1
		WHERE id=$2 AND type=$3 AND status=$4
`

	res, err := r.db.ExecContext(ctx, SQL, to, id, model.TransactionTypeTopUp, from)
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

// RejectStalePending implementation of interface storage.TransactionRepository
func (r *TransactionRepository) RejectStalePending(ctx context.Context, deadline time.Time) (int64, error) {
	const SQL = `
		UPDATE transactions
		SET status=$1, description='Expired'
		WHERE type=$2 AND status=$3 AND created_at < $4
`

	res, err := r.db.ExecContext(ctx, SQL,
		model.TransactionStatusRejected, model.TransactionTypeTopUp, model.TransactionStatusPending, deadline)
	if err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}

func (r *TransactionRepository) scanRow(row *sql.Row) (*model.Transaction, error) {
	m := &model.Transaction{}
	var status, tranID sql.NullString

	err := row.Scan(&m.ID, &m.UserID, &m.UserName, &m.Type, &m.Amount, &status, &m.Description, &tranID, &m.GatewayName, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select: %w", err)
	}

	m.Status = model.TransactionStatus(status.String)
	m.TranID = tranID.String

	return m, nil
}

func (r *TransactionRepository) scanRows(ctx context.Context, rows *sql.Rows) ([]*model.Transaction, error) {
	l := logger.Ctx(ctx).Component(r)
	defer func() {
		_ = rows.Close()
	}()

	res := make([]*model.Transaction, 0)

	for rows.Next() {
		m := &model.Transaction{}
		var status, tranID sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.Type, &m.Amount, &status, &m.Description, &tranID, &m.GatewayName, &m.CreatedAt); err != nil {
			l.Debug().Err(err).Send()
			return nil, fmt.Errorf("scan: %w", err)
		}
		m.Status = model.TransactionStatus(status.String)
		m.TranID = tranID.String
		res = append(res, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return res, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
