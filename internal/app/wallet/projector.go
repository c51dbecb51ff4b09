// Package wallet derives spendable balance from the transaction ledger.
package wallet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/model"
)

// Project folds a transaction set into the spendable balance of one user.
// Approved top-ups add, purchases subtract unconditionally, pending and
// rejected top-ups contribute nothing. The fold is commutative, so callers
// may pass transactions in any order. Every balance reader in the system
// must go through this function.
func Project(transactions []*model.Transaction, userID uuid.UUID) decimal.Decimal {
	balance := decimal.Zero

	for _, t := range transactions {
		if t.UserID != userID {
			continue
		}
		switch t.Type {
		case model.TransactionTypeTopUp:
			if t.Status == model.TransactionStatusApproved {
				balance = balance.Add(t.Amount)
			}
		case model.TransactionTypePurchase:
			balance = balance.Sub(t.Amount)
		}
	}

	return balance
}
