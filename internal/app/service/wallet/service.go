// Package wallet exposes balances and ledger history, plus the admin
// overrides that write directly to the ledger.
package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/feed"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	"topupmart/internal/app/storage"
	projector "topupmart/internal/app/wallet"
)

type Service struct {
	logger       logger.Logger
	transactions storage.TransactionRepository
	feed         *feed.Publisher
}

func (s *Service) LoggerComponent() string {
	return "Wallet.Service"
}

func New(transactions storage.TransactionRepository, pub *feed.Publisher) *Service {
	s := &Service{
		transactions: transactions,
		feed:         pub,
	}
	s.logger = logger.Global().Component(s)

	return s
}

// Balance folds the user's full ledger; there is no stored balance to drift.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	all, err := s.transactions.AllByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger read: %w", err)
	}

	return projector.Project(all, userID), nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]*model.Transaction, error) {
	return s.transactions.AllByUserID(ctx, userID)
}

func (s *Service) All(ctx context.Context) ([]*model.Transaction, error) {
	return s.transactions.All(ctx)
}

// SetTopUpStatus settles a pending top-up by hand, for notifications that
// never arrived. Same conditional-write gate as the automatic settlement, so
// it cannot overwrite a finished one.
func (s *Service) SetTopUpStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus) error {
	l := logger.Get(ctx, s).With().
		Str("method", "SetTopUpStatus").
		Str("transaction_id", id.String()).
		Logger()

	if status != model.TransactionStatusApproved && status != model.TransactionStatusRejected {
		return apperr.ErrInvalidInput
	}

	err := s.transactions.SettleByID(ctx, id, model.TransactionStatusPending, status)
	if err != nil {
		return err
	}

	if t, err := s.transactions.Read(ctx, id); err == nil {
		s.feed.WalletChanged(ctx, t)
	}
	l.Info().Str("status", string(status)).Msg("Top-up settled manually")

	return nil
}

// AdjustBalance appends an adjustment entry: a positive amount becomes an
// approved top-up, a negative one a purchase. The ledger stays append-only
// even for corrections.
func (s *Service) AdjustBalance(ctx context.Context, userID uuid.UUID, userName string, amount decimal.Decimal, reason string) (*model.Transaction, error) {
	l := logger.Get(ctx, s).With().
		Str("method", "AdjustBalance").
		Str("user_id", userID.String()).
		Logger()

	if userID == uuid.Nil || userName == "" || amount.IsZero() || reason == "" {
		return nil, apperr.ErrInvalidInput
	}

	t := &model.Transaction{
		UserID:      userID,
		UserName:    userName,
		Description: "Admin Adjustment: " + reason,
	}
	if amount.IsPositive() {
		t.Type = model.TransactionTypeTopUp
		t.Status = model.TransactionStatusApproved
		t.Amount = amount
	} else {
		t.Type = model.TransactionTypePurchase
		t.Amount = amount.Neg()
	}

	t, err := s.transactions.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("ledger append: %w", err)
	}

	s.feed.WalletChanged(ctx, t)
	l.Info().Str("amount", amount.String()).Msg("Balance adjusted")

	return t, nil
}
