package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTopUp    TransactionType = "topup"
	TransactionTypePurchase TransactionType = "purchase"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Transaction is a ledger entry. Entries are append-only: after creation only
// Status (top-ups) and Description (failed settlements) ever change, and only
// through the conditional settle operations of the repository.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	UserName    string            `json:"user"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status,omitempty"` // top-ups only, empty for purchases
	Description string            `json:"description,omitempty"`
	TranID      string            `json:"tran_id,omitempty"` // gateway session reference
	GatewayName string            `json:"gateway,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
