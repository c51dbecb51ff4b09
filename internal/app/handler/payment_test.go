package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/feed"
	"topupmart/internal/app/model"
	"topupmart/internal/app/service/payment"
	"topupmart/pkg/sslcommerz"
)

// stubTransactionRepo holds a single pending top-up.
type stubTransactionRepo struct {
	item *model.Transaction
}

func (s *stubTransactionRepo) Create(_ context.Context, m *model.Transaction) (*model.Transaction, error) {
	return m, nil
}

func (s *stubTransactionRepo) TxCreate(_ context.Context, _ *sql.Tx, m *model.Transaction) (*model.Transaction, error) {
	return m, nil
}

func (s *stubTransactionRepo) Read(context.Context, uuid.UUID) (*model.Transaction, error) {
	return nil, apperr.ErrNotFound
}

func (s *stubTransactionRepo) ReadByTranID(_ context.Context, tranID string) (*model.Transaction, error) {
	if s.item != nil && s.item.TranID == tranID {
		c := *s.item
		return &c, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubTransactionRepo) All(context.Context) ([]*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) AllByUserID(context.Context, uuid.UUID) ([]*model.Transaction, error) {
	return nil, nil
}

func (s *stubTransactionRepo) SettleByTranID(_ context.Context, tranID string, from, to model.TransactionStatus, description string) error {
	if s.item != nil && s.item.TranID == tranID && s.item.Status == from {
		s.item.Status = to
		if description != "" {
			s.item.Description = description
		}
		return nil
	}
	return apperr.ErrNotFound
}

func (s *stubTransactionRepo) SettleByID(context.Context, uuid.UUID, model.TransactionStatus, model.TransactionStatus) error {
	return apperr.ErrNotFound
}

func (s *stubTransactionRepo) RejectStalePending(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubGatewayRepo struct {
	gateway *model.PaymentGateway
}

func (s *stubGatewayRepo) Create(_ context.Context, m *model.PaymentGateway) (*model.PaymentGateway, error) {
	return m, nil
}

func (s *stubGatewayRepo) Read(context.Context, uuid.UUID) (*model.PaymentGateway, error) {
	if s.gateway != nil {
		return s.gateway, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubGatewayRepo) ReadByName(context.Context, string) (*model.PaymentGateway, error) {
	if s.gateway != nil {
		return s.gateway, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubGatewayRepo) All(context.Context) ([]*model.PaymentGateway, error) {
	return nil, nil
}

func (s *stubGatewayRepo) Update(_ context.Context, m *model.PaymentGateway) (*model.PaymentGateway, error) {
	return m, nil
}

func (s *stubGatewayRepo) Delete(context.Context, uuid.UUID) error {
	return nil
}

type stubGatewayClient struct{}

func (stubGatewayClient) CreateSession(context.Context, sslcommerz.Credentials, *sslcommerz.SessionRequest) (*sslcommerz.SessionResponse, error) {
	return &sslcommerz.SessionResponse{Status: sslcommerz.SessionStatusSuccess, GatewayPageURL: "https://pay.example.com/gw"}, nil
}

func (stubGatewayClient) ValidatePayment(context.Context, sslcommerz.Credentials, string) (*sslcommerz.ValidationResponse, error) {
	return &sslcommerz.ValidationResponse{Status: "VALID"}, nil
}

func newPaymentHandler(transactions *stubTransactionRepo, gateways *stubGatewayRepo) *PaymentHandler {
	svc := payment.New(transactions, gateways, stubGatewayClient{}, feed.NewNop(),
		"https://api.example.com", "https://shop.example.com")
	return NewPaymentHandler(svc)
}

func postIPN(h *PaymentHandler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/ipn", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.IPN(rec, req)
	return rec
}

func TestIPNDecodesForm(t *testing.T) {
	transactions := &stubTransactionRepo{item: &model.Transaction{
		UserID:      uuid.New(),
		Type:        model.TransactionTypeTopUp,
		Status:      model.TransactionStatusPending,
		Amount:      decimal.RequireFromString("100"),
		TranID:      "TXN_abc12_x",
		GatewayName: "SSLCommerz Sandbox",
	}}
	h := newPaymentHandler(transactions, &stubGatewayRepo{gateway: &model.PaymentGateway{
		Name: "SSLCommerz Sandbox", StoreID: "s", StoreSecret: "p", APIBaseURL: "https://sandbox.example.com", Enabled: true,
	}})

	rec := postIPN(h, url.Values{
		"tran_id": {"TXN_abc12_x"},
		"status":  {"VALID"},
		"val_id":  {"val123"},
		"amount":  {"100"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TransactionStatusApproved, transactions.item.Status)
}

func TestIPNBadAmount(t *testing.T) {
	h := newPaymentHandler(&stubTransactionRepo{}, &stubGatewayRepo{})

	rec := postIPN(h, url.Values{
		"tran_id": {"TXN_abc12_x"},
		"status":  {"VALID"},
		"amount":  {"not-a-number"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIPNUnknownReference(t *testing.T) {
	h := newPaymentHandler(&stubTransactionRepo{}, &stubGatewayRepo{})

	rec := postIPN(h, url.Values{
		"tran_id": {"TXN_missing"},
		"status":  {"VALID"},
		"val_id":  {"val123"},
		"amount":  {"100"},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitiateUnauthenticated(t *testing.T) {
	h := newPaymentHandler(&stubTransactionRepo{}, &stubGatewayRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/initiate",
		strings.NewReader(`{"amount":"100","gatewayId":"`+uuid.New().String()+`"}`))
	rec := httptest.NewRecorder()

	h.Initiate(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedirectBouncesToClient(t *testing.T) {
	transactions := &stubTransactionRepo{item: &model.Transaction{
		Type:   model.TransactionTypeTopUp,
		Status: model.TransactionStatusPending,
		TranID: "TXN_abc12_x",
	}}
	h := newPaymentHandler(transactions, &stubGatewayRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/fail/TXN_abc12_x", nil)
	rec := httptest.NewRecorder()

	h.Redirect(payment.RedirectFail)(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://shop.example.com/payment/fail", rec.Header().Get("Location"))
}
