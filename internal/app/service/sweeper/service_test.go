package sweeper

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"topupmart/internal/app/model"
)

type stubTransactionRepo struct {
	deadline time.Time
	rejected int64
	err      error
}

func (s *stubTransactionRepo) RejectStalePending(_ context.Context, deadline time.Time) (int64, error) {
	s.deadline = deadline
	return s.rejected, s.err
}

func (s *stubTransactionRepo) Create(context.Context, *model.Transaction) (*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) TxCreate(context.Context, *sql.Tx, *model.Transaction) (*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) Read(context.Context, uuid.UUID) (*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) ReadByTranID(context.Context, string) (*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) All(context.Context) ([]*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) AllByUserID(context.Context, uuid.UUID) ([]*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) SettleByTranID(context.Context, string, model.TransactionStatus, model.TransactionStatus, string) error {
	return nil
}

func (s *stubTransactionRepo) SettleByID(context.Context, uuid.UUID, model.TransactionStatus, model.TransactionStatus) error {
	return nil
}

func TestSweep(t *testing.T) {
	repo := &stubTransactionRepo{rejected: 2}
	svc := New(repo, time.Minute, 24*time.Hour)

	before := time.Now().Add(-24 * time.Hour)
	n, err := svc.Sweep(context.Background())
	after := time.Now().Add(-24 * time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// deadline is now minus the configured pending age
	assert.False(t, repo.deadline.Before(before))
	assert.False(t, repo.deadline.After(after))
}

func TestSweepRepositoryError(t *testing.T) {
	repo := &stubTransactionRepo{err: sql.ErrConnDone}
	svc := New(repo, time.Minute, 24*time.Hour)

	_, err := svc.Sweep(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
