// Package orders owns the order lifecycle and the compensating ledger entries
// an admin-driven status change produces.
package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/feed"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/metrics"
	"topupmart/internal/app/model"
	"topupmart/internal/app/storage"
	"topupmart/internal/app/wallet"
)

type Service struct {
	logger       logger.Logger
	db           *sql.DB
	orders       storage.OrderRepository
	transactions storage.TransactionRepository
	feed         *feed.Publisher
}

func (s *Service) LoggerComponent() string {
	return "Orders.Service"
}

func New(db *sql.DB, orders storage.OrderRepository, transactions storage.TransactionRepository, pub *feed.Publisher) *Service {
	s := &Service{
		db:           db,
		orders:       orders,
		transactions: transactions,
		feed:         pub,
	}
	s.logger = logger.Global().Component(s)

	return s
}

type PurchaseInput struct {
	UserID   uuid.UUID
	UserName string
	Product  string
	Amount   decimal.Decimal
}

// PlacePurchase appends the immediately-final purchase entry and creates the
// processing order in a single database transaction.
func (s *Service) PlacePurchase(ctx context.Context, in PurchaseInput) (*model.Order, error) {
	l := logger.Get(ctx, s).With().Str("method", "PlacePurchase").Logger()

	if in.UserID == uuid.Nil || in.UserName == "" || in.Product == "" || !in.Amount.IsPositive() {
		return nil, apperr.ErrInvalidInput
	}

	all, err := s.transactions.AllByUserID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("ledger read: %w", err)
	}
	if wallet.Project(all, in.UserID).LessThan(in.Amount) {
		return nil, apperr.ErrInsufficientFunds
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return nil, fmt.Errorf("tx begin: %w", err)
	}

	t, err := s.transactions.TxCreate(ctx, tx, &model.Transaction{
		UserID:      in.UserID,
		UserName:    in.UserName,
		Type:        model.TransactionTypePurchase,
		Amount:      in.Amount,
		Description: "Purchase: " + in.Product,
	})
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("ledger append: %w", err)
	}

	o, err := s.orders.TxCreate(ctx, tx, &model.Order{
		UserID:   in.UserID,
		UserName: in.UserName,
		Product:  in.Product,
		Amount:   in.Amount,
		Status:   model.OrderStatusProcessing,
	})
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("order create: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit: %w", err)
	}

	s.feed.WalletChanged(ctx, t)
	s.feed.OrderChanged(ctx, o)
	l.Info().Str("order_id", o.ID.String()).Str("product", o.Product).Msg("Purchase placed")

	return o, nil
}

// SetStatus transitions an order and appends the compensating ledger entry
// the transition requires, both inside one database transaction. Moving to
// failed refunds the purchase; leaving failed deducts it again. A transition
// to the current status is a no-op.
func (s *Service) SetStatus(ctx context.Context, orderID uuid.UUID, newStatus model.OrderStatus) error {
	l := logger.Get(ctx, s).With().
		Str("method", "SetStatus").
		Str("order_id", orderID.String()).
		Str("new_status", string(newStatus)).
		Logger()

	if !newStatus.Valid() {
		return apperr.ErrInvalidInput
	}

	o, err := s.orders.Read(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status == newStatus {
		l.Debug().Msg("Status unchanged")
		return nil
	}

	var (
		compensation *model.Transaction
		kind         string
	)
	switch {
	case newStatus == model.OrderStatusFailed:
		compensation = &model.Transaction{
			UserID:      o.UserID,
			UserName:    o.UserName,
			Type:        model.TransactionTypeTopUp,
			Status:      model.TransactionStatusApproved,
			Amount:      o.Amount,
			Description: "Refund for failed order: " + o.Product,
		}
		kind = "refund"
	case o.Status == model.OrderStatusFailed:
		compensation = &model.Transaction{
			UserID:      o.UserID,
			UserName:    o.UserName,
			Type:        model.TransactionTypePurchase,
			Amount:      o.Amount,
			Description: "Re-processing order: " + o.Product,
		}
		kind = "rededuct"
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("tx begin: %w", err)
	}

	if compensation != nil {
		if compensation, err = s.transactions.TxCreate(ctx, tx, compensation); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("compensation append: %w", err)
		}
	}

	if err := s.orders.TxUpdateStatus(ctx, tx, o.ID, newStatus); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("status update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}

	if compensation != nil {
		metrics.CompensationsTotal.WithLabelValues(kind).Inc()
		s.feed.WalletChanged(ctx, compensation)
	}
	previous := o.Status
	o.Status = newStatus
	s.feed.OrderChanged(ctx, o)
	l.Info().Str("previous_status", string(previous)).Msg("Order status updated")

	return nil
}
