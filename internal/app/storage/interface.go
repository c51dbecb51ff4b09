package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"topupmart/internal/app/model"
)

type UserRepository interface {
	// Create a new model.User
	Create(ctx context.Context, m *model.User) (*model.User, error)
	// ReadByNameAndPassword instance of model.User
	ReadByNameAndPassword(ctx context.Context, name string, password string) (*model.User, error)
	// Read instance of model.User
	Read(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type TransactionRepository interface {
	// Create appends a new ledger entry
	Create(ctx context.Context, m *model.Transaction) (*model.Transaction, error)
	// TxCreate appends a new ledger entry within the tx
	TxCreate(ctx context.Context, tx *sql.Tx, m *model.Transaction) (*model.Transaction, error)
	// Read instance of model.Transaction
	Read(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// ReadByTranID finds the top-up correlated to a gateway session
	ReadByTranID(ctx context.Context, tranID string) (*model.Transaction, error)
	// All entries, newest first
	All(ctx context.Context) ([]*model.Transaction, error)
	// AllByUserID entries of one user, newest first
	AllByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Transaction, error)
	// SettleByTranID conditionally moves the entry from one status to another.
	// Returns apperr.ErrNotFound when no row is in the expected status, which
	// makes duplicate settlements observable as no-ops.
	SettleByTranID(ctx context.Context, tranID string, from, to model.TransactionStatus, description string) error
	// SettleByID is SettleByTranID keyed by primary id (admin settlements)
	SettleByID(ctx context.Context, id uuid.UUID, from, to model.TransactionStatus) error
	// RejectStalePending rejects pending top-ups created before the deadline
	RejectStalePending(ctx context.Context, deadline time.Time) (int64, error)
}

type OrderRepository interface {
	// Create a new model.Order
	Create(ctx context.Context, m *model.Order) (*model.Order, error)
	// TxCreate a new model.Order within the tx
	TxCreate(ctx context.Context, tx *sql.Tx, m *model.Order) (*model.Order, error)
	// Read instance of model.Order
	Read(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// All orders, newest first
	All(ctx context.Context) ([]*model.Order, error)
	// AllByUserID returns all orders of user
	AllByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
	// TxUpdateStatus within the tx
	TxUpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.OrderStatus) error
}

type GatewayRepository interface {
	// Create a new model.PaymentGateway
	Create(ctx context.Context, m *model.PaymentGateway) (*model.PaymentGateway, error)
	// Read instance of model.PaymentGateway
	Read(ctx context.Context, id uuid.UUID) (*model.PaymentGateway, error)
	// ReadByName is used by the IPN path, which only knows the denormalized name
	ReadByName(ctx context.Context, name string) (*model.PaymentGateway, error)
	// All gateways
	All(ctx context.Context) ([]*model.PaymentGateway, error)
	// Update instance of model.PaymentGateway
	Update(ctx context.Context, m *model.PaymentGateway) (*model.PaymentGateway, error)
	// Delete instance of model.PaymentGateway
	Delete(ctx context.Context, id uuid.UUID) error
}
