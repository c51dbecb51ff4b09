package wallet

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"topupmart/internal/app/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProject(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()

	tt := []struct {
		name         string
		transactions []*model.Transaction
		want         decimal.Decimal
	}{
		{
			name:         "empty ledger",
			transactions: nil,
			want:         decimal.Zero,
		},
		{
			name: "approved top-up adds",
			transactions: []*model.Transaction{
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("100")},
			},
			want: d("100"),
		},
		{
			name: "pending and rejected top-ups contribute nothing",
			transactions: []*model.Transaction{
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusPending, Amount: d("50")},
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusRejected, Amount: d("70")},
			},
			want: decimal.Zero,
		},
		{
			name: "purchase subtracts unconditionally",
			transactions: []*model.Transaction{
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("100")},
				{UserID: userID, Type: model.TransactionTypePurchase, Amount: d("30")},
			},
			want: d("70"),
		},
		{
			name: "other users filtered out",
			transactions: []*model.Transaction{
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("100")},
				{UserID: otherID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("500")},
				{UserID: otherID, Type: model.TransactionTypePurchase, Amount: d("200")},
			},
			want: d("100"),
		},
		{
			name: "refund round trip nets zero",
			transactions: []*model.Transaction{
				{UserID: userID, Type: model.TransactionTypePurchase, Amount: d("40")},
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("40")},
			},
			want: decimal.Zero,
		},
		{
			name: "fractional amounts stay exact",
			transactions: []*model.Transaction{
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("0.1")},
				{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("0.2")},
			},
			want: d("0.3"),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := Project(tc.transactions, userID)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestProjectCommutative(t *testing.T) {
	userID := uuid.New()

	transactions := []*model.Transaction{
		{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("100")},
		{UserID: userID, Type: model.TransactionTypePurchase, Amount: d("25")},
		{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusPending, Amount: d("500")},
		{UserID: userID, Type: model.TransactionTypePurchase, Amount: d("10.50")},
		{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusApproved, Amount: d("36.50")},
		{UserID: userID, Type: model.TransactionTypeTopUp, Status: model.TransactionStatusRejected, Amount: d("77")},
	}

	want := Project(transactions, userID)
	assert.True(t, d("101").Equal(want))

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]*model.Transaction, len(transactions))
		copy(shuffled, transactions)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Project(shuffled, userID)
		assert.True(t, want.Equal(got), "order %d: want %s, got %s", i, want, got)
	}
}
