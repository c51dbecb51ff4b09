package wallet

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/feed"
	"topupmart/internal/app/model"
)

type stubTransactionRepo struct {
	items []*model.Transaction

	settledID   uuid.UUID
	settledFrom model.TransactionStatus
	settledTo   model.TransactionStatus
	settleErr   error
}

func (s *stubTransactionRepo) Create(_ context.Context, m *model.Transaction) (*model.Transaction, error) {
	c := *m
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	s.items = append(s.items, &c)
	return &c, nil
}

func (s *stubTransactionRepo) TxCreate(ctx context.Context, _ *sql.Tx, m *model.Transaction) (*model.Transaction, error) {
	return s.Create(ctx, m)
}

func (s *stubTransactionRepo) Read(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *stubTransactionRepo) ReadByTranID(context.Context, string) (*model.Transaction, error) {
	return nil, apperr.ErrNotFound
}

func (s *stubTransactionRepo) All(context.Context) ([]*model.Transaction, error) {
	return s.items, nil
}

func (s *stubTransactionRepo) AllByUserID(_ context.Context, userID uuid.UUID) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for _, t := range s.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTransactionRepo) SettleByTranID(context.Context, string, model.TransactionStatus, model.TransactionStatus, string) error {
	return nil
}

func (s *stubTransactionRepo) SettleByID(_ context.Context, id uuid.UUID, from, to model.TransactionStatus) error {
	s.settledID = id
	s.settledFrom = from
	s.settledTo = to
	return s.settleErr
}

func (s *stubTransactionRepo) RejectStalePending(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestBalance(t *testing.T) {
	repo := &stubTransactionRepo{}
	svc := New(repo, feed.NewNop())
	userID := uuid.New()

	_, _ = repo.Create(context.Background(), &model.Transaction{
		UserID: userID,
		Type:   model.TransactionTypeTopUp,
		Status: model.TransactionStatusApproved,
		Amount: decimal.RequireFromString("100"),
	})
	_, _ = repo.Create(context.Background(), &model.Transaction{
		UserID: userID,
		Type:   model.TransactionTypePurchase,
		Amount: decimal.RequireFromString("30"),
	})

	b, err := svc.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("70").Equal(b))
}

func TestSetTopUpStatus(t *testing.T) {
	repo := &stubTransactionRepo{}
	svc := New(repo, feed.NewNop())
	id := uuid.New()

	require.NoError(t, svc.SetTopUpStatus(context.Background(), id, model.TransactionStatusApproved))

	assert.Equal(t, id, repo.settledID)
	assert.Equal(t, model.TransactionStatusPending, repo.settledFrom)
	assert.Equal(t, model.TransactionStatusApproved, repo.settledTo)
}

func TestSetTopUpStatusRejectsPending(t *testing.T) {
	repo := &stubTransactionRepo{}
	svc := New(repo, feed.NewNop())

	// pending is not a settlement target
	err := svc.SetTopUpStatus(context.Background(), uuid.New(), model.TransactionStatusPending)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestSetTopUpStatusAlreadySettled(t *testing.T) {
	repo := &stubTransactionRepo{settleErr: apperr.ErrNotFound}
	svc := New(repo, feed.NewNop())

	err := svc.SetTopUpStatus(context.Background(), uuid.New(), model.TransactionStatusRejected)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdjustBalance(t *testing.T) {
	repo := &stubTransactionRepo{}
	svc := New(repo, feed.NewNop())
	userID := uuid.New()

	credit, err := svc.AdjustBalance(context.Background(), userID, "alice",
		decimal.RequireFromString("50"), "Promo credit")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeTopUp, credit.Type)
	assert.Equal(t, model.TransactionStatusApproved, credit.Status)
	assert.Equal(t, "Admin Adjustment: Promo credit", credit.Description)
	assert.True(t, decimal.RequireFromString("50").Equal(credit.Amount))

	debit, err := svc.AdjustBalance(context.Background(), userID, "alice",
		decimal.RequireFromString("-20"), "Chargeback")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypePurchase, debit.Type)
	assert.Empty(t, debit.Status)
	assert.True(t, decimal.RequireFromString("20").Equal(debit.Amount))

	b, err := svc.Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30").Equal(b))
}

func TestAdjustBalanceInvalid(t *testing.T) {
	repo := &stubTransactionRepo{}
	svc := New(repo, feed.NewNop())

	_, err := svc.AdjustBalance(context.Background(), uuid.New(), "alice", decimal.Zero, "reason")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.AdjustBalance(context.Background(), uuid.New(), "alice",
		decimal.RequireFromString("10"), "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
