package sslcommerz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials(baseURL string) Credentials {
	return Credentials{
		StoreID:     "teststore",
		StoreSecret: "testsecret",
		BaseURL:     baseURL,
	}
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, sessionEndpoint, r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "teststore", r.PostFormValue("store_id"))
		assert.Equal(t, "testsecret", r.PostFormValue("store_passwd"))
		assert.Equal(t, "150.5", r.PostFormValue("total_amount"))
		assert.Equal(t, "BDT", r.PostFormValue("currency"))
		assert.Equal(t, "TXN_abc12_x", r.PostFormValue("tran_id"))
		assert.Equal(t, "https://api.example.com/api/payment/ipn", r.PostFormValue("ipn_url"))

		_ = json.NewEncoder(w).Encode(&SessionResponse{
			Status:         SessionStatusSuccess,
			SessionKey:     "sess_1",
			GatewayPageURL: "https://pay.example.com/gw?session=sess_1",
		})
	}))
	defer srv.Close()

	svc := NewService()

	out, err := svc.CreateSession(context.Background(), testCredentials(srv.URL), &SessionRequest{
		Amount:     decimal.RequireFromString("150.5"),
		Currency:   "BDT",
		TranID:     "TXN_abc12_x",
		SuccessURL: "https://api.example.com/api/payment/success/TXN_abc12_x",
		FailURL:    "https://api.example.com/api/payment/fail/TXN_abc12_x",
		CancelURL:  "https://api.example.com/api/payment/cancel/TXN_abc12_x",
		IPNURL:     "https://api.example.com/api/payment/ipn",
	})
	require.NoError(t, err)

	assert.Equal(t, SessionStatusSuccess, out.Status)
	assert.Equal(t, "https://pay.example.com/gw?session=sess_1", out.GatewayPageURL)
}

func TestCreateSessionRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store authentication failed", http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewService()

	_, err := svc.CreateSession(context.Background(), testCredentials(srv.URL), &SessionRequest{
		Amount:   decimal.RequireFromString("10"),
		Currency: "BDT",
		TranID:   "TXN_abc12_x",
	})
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusUnauthorized, remoteErr.StatusCode)
}

func TestValidatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, validationEndpoint, r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "val123", q.Get("val_id"))
		assert.Equal(t, "teststore", q.Get("store_id"))
		assert.Equal(t, "testsecret", q.Get("store_passwd"))
		assert.Equal(t, "json", q.Get("format"))

		_ = json.NewEncoder(w).Encode(&ValidationResponse{
			Status: "VALID",
			TranID: "TXN_abc12_x",
			ValID:  "val123",
			Amount: "150.50",
		})
	}))
	defer srv.Close()

	svc := NewService()

	out, err := svc.ValidatePayment(context.Background(), testCredentials(srv.URL), "val123")
	require.NoError(t, err)

	assert.True(t, out.Valid())
	assert.Equal(t, "TXN_abc12_x", out.TranID)
}

func TestValidationResponseValid(t *testing.T) {
	tt := []struct {
		status string
		want   bool
	}{
		{"VALID", true},
		{"VALIDATED", true},
		{"INVALID_TRANSACTION", false},
		{"FAILED", false},
		{"", false},
	}

	for _, tc := range tt {
		r := &ValidationResponse{Status: tc.status}
		assert.Equal(t, tc.want, r.Valid(), "status %q", tc.status)
	}
}
