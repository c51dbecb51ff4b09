package sslcommerz

import "github.com/shopspring/decimal"

// Credentials of one configured store. The client itself is stateless so a
// single instance serves any number of registered gateways.
type Credentials struct {
	StoreID     string
	StoreSecret string
	BaseURL     string
}

type SessionRequest struct {
	Amount          decimal.Decimal
	Currency        string
	TranID          string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	IPNURL          string
	CustomerName    string
	CustomerEmail   string
	ProductName     string
	ProductCategory string
}

type SessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

const SessionStatusSuccess = "SUCCESS"

type ValidationResponse struct {
	Status   string `json:"status"`
	TranID   string `json:"tran_id"`
	ValID    string `json:"val_id"`
	Amount   string `json:"amount"`
	RiskLevel string `json:"risk_level"`
}

// Valid reports whether the gateway confirmed the payment. The validator API
// answers VALID for a fresh confirmation and VALIDATED for a replayed one;
// both mean the money moved.
func (r *ValidationResponse) Valid() bool {
	return r.Status == "VALID" || r.Status == "VALIDATED"
}
