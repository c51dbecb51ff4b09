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

// storage.GatewayRepository interface implementation
var _ storage.GatewayRepository = (*GatewayRepository)(nil)

type GatewayRepository struct {
	db *sql.DB
}

func (r *GatewayRepository) LoggerComponent() string {
	return "GatewayRepository"
}

func NewGatewayRepository(db *sql.DB) (*GatewayRepository, error) {
	s := &GatewayRepository{
		db: db,
	}
	return s, nil
}

// Create implementation of interface storage.GatewayRepository
func (r *GatewayRepository) Create(ctx context.Context, m *model.PaymentGateway) (*model.PaymentGateway, error) {
	if m.Name == "" || m.StoreID == "" || m.StoreSecret == "" || m.APIBaseURL == "" {
		return nil, apperr.ErrInvalidInput
	}

	const SQL = `
		INSERT INTO payment_gateways (name, logo_url, store_id, store_secret, api_base_url, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
`

	err := r.db.QueryRowContext(ctx, SQL, m.Name, m.LogoURL, m.StoreID, m.StoreSecret, m.APIBaseURL, m.Enabled).Scan(&m.ID)
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

// Read implementation of interface storage.GatewayRepository
func (r *GatewayRepository) Read(ctx context.Context, id uuid.UUID) (*model.PaymentGateway, error) {
	const SQL = `
		SELECT id, name, logo_url, store_id, store_secret, api_base_url, enabled
		FROM payment_gateways
		WHERE id=$1
`
	return r.scanRow(r.db.QueryRowContext(ctx, SQL, id))
}

// ReadByName implementation of interface storage.GatewayRepository
func (r *GatewayRepository) ReadByName(ctx context.Context, name string) (*model.PaymentGateway, error) {
	const SQL = `
		SELECT id, name, logo_url, store_id, store_secret, api_base_url, enabled
		FROM payment_gateways
		WHERE name=$1
`
	return r.scanRow(r.db.QueryRowContext(ctx, SQL, name))
}

// All implementation of interface storage.GatewayRepository
func (r *GatewayRepository) All(ctx context.Context) ([]*model.PaymentGateway, error) {
	l := logger.Ctx(ctx).Component(r)

	const SQL = `
		SELECT id, name, logo_url, store_id, store_secret, api_base_url, enabled
		FROM payment_gateways
		ORDER BY name
`
	rows, err := r.db.QueryContext(ctx, SQL)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	res := make([]*model.PaymentGateway, 0)

	for rows.Next() {
		m := &model.PaymentGateway{}
		if err := rows.Scan(&m.ID, &m.Name, &m.LogoURL, &m.StoreID, &m.StoreSecret, &m.APIBaseURL, &m.Enabled); err != nil {
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

// Update implementation of interface storage.GatewayRepository
func (r *GatewayRepository) Update(ctx context.Context, m *model.PaymentGateway) (*model.PaymentGateway, error) {
	const SQL = `
		UPDATE payment_gateways
		SET name=$1, logo_url=$2, store_id=$3, store_secret=$4, api_base_url=$5, enabled=$6
		WHERE id=$7
`

	res, err := r.db.ExecContext(ctx, SQL, m.Name, m.LogoURL, m.StoreID, m.StoreSecret, m.APIBaseURL, m.Enabled, m.ID)
	if err != nil {
		if pgErr, ok := err.(*pg.Error); ok {
			if pgerrcode.IsIntegrityConstraintViolation(string(pgErr.Code)) {
				return nil, apperr.ErrConflict
			}
		}

		return nil, fmt.Errorf("update: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, apperr.ErrNotFound
	}

	return m, nil
}

// Delete implementation of interface storage.GatewayRepository
func (r *GatewayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const SQL = `
		DELETE FROM payment_gateways
		WHERE id=$1
`

	res, err := r.db.ExecContext(ctx, SQL, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
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

func (r *GatewayRepository) scanRow(row *sql.Row) (*model.PaymentGateway, error) {
	m := &model.PaymentGateway{}

	err := row.Scan(&m.ID, &m.Name, &m.LogoURL, &m.StoreID, &m.StoreSecret, &m.APIBaseURL, &m.Enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("select: %w", err)
	}

	return m, nil
}
