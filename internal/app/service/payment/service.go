// Package payment drives the hosted-gateway top-up protocol: session
// initiation, the cosmetic browser redirects and the authoritative IPN
// settlement, reconciling all of it into the transaction ledger.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/feed"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/metrics"
	"topupmart/internal/app/model"
	"topupmart/internal/app/storage"
	"topupmart/pkg/sslcommerz"
)

const currency = "BDT"

// NotificationStatusValid is the only declared IPN status that may lead to an
// approval; everything else is a terminal negative.
const NotificationStatusValid = "VALID"

type GatewayClient interface {
	CreateSession(ctx context.Context, creds sslcommerz.Credentials, in *sslcommerz.SessionRequest) (*sslcommerz.SessionResponse, error)
	ValidatePayment(ctx context.Context, creds sslcommerz.Credentials, valID string) (*sslcommerz.ValidationResponse, error)
}

type Service struct {
	logger        logger.Logger
	transactions  storage.TransactionRepository
	gateways      storage.GatewayRepository
	client        GatewayClient
	feed          *feed.Publisher
	serverBaseURL string
	clientBaseURL string
}

func (s *Service) LoggerComponent() string {
	return "Payment.Service"
}

func New(transactions storage.TransactionRepository, gateways storage.GatewayRepository, client GatewayClient, pub *feed.Publisher, serverBaseURL, clientBaseURL string) *Service {
	s := &Service{
		transactions:  transactions,
		gateways:      gateways,
		client:        client,
		feed:          pub,
		serverBaseURL: serverBaseURL,
		clientBaseURL: clientBaseURL,
	}
	s.logger = logger.Global().Component(s)

	return s
}

type InitiateInput struct {
	Amount    decimal.Decimal
	GatewayID uuid.UUID
	UserID    uuid.UUID
	UserName  string
	UserEmail string
}

// Initiate appends a pending top-up and opens a gateway session for it. The
// ledger entry is written before the gateway is contacted, so a session that
// never materializes still leaves an auditable pending record behind.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (string, error) {
	l := logger.Get(ctx, s).With().Str("method", "Initiate").Logger()

	if !in.Amount.IsPositive() || in.GatewayID == uuid.Nil || in.UserID == uuid.Nil || in.UserName == "" || in.UserEmail == "" {
		return "", apperr.ErrInvalidInput
	}

	g, err := s.gateways.Read(ctx, in.GatewayID)
	if err != nil {
		return "", err
	}
	if !g.Enabled {
		return "", apperr.ErrForbidden
	}

	tranID := fmt.Sprintf("TXN_%s_%s", in.UserID.String()[:5], xid.New().String())

	t, err := s.transactions.Create(ctx, &model.Transaction{
		UserID:      in.UserID,
		UserName:    in.UserName,
		Type:        model.TransactionTypeTopUp,
		Amount:      in.Amount,
		Status:      model.TransactionStatusPending,
		Description: "Wallet Top-up via " + g.Name,
		TranID:      tranID,
		GatewayName: g.Name,
	})
	if err != nil {
		return "", fmt.Errorf("ledger append: %w", err)
	}
	s.feed.WalletChanged(ctx, t)

	res, err := s.client.CreateSession(ctx, credentials(g), &sslcommerz.SessionRequest{
		Amount:          in.Amount,
		Currency:        currency,
		TranID:          tranID,
		SuccessURL:      s.serverBaseURL + "/api/payment/success/" + tranID,
		FailURL:         s.serverBaseURL + "/api/payment/fail/" + tranID,
		CancelURL:       s.serverBaseURL + "/api/payment/cancel/" + tranID,
		IPNURL:          s.serverBaseURL + "/api/payment/ipn",
		CustomerName:    in.UserName,
		CustomerEmail:   in.UserEmail,
		ProductName:     "Wallet Top-up",
		ProductCategory: "Digital Goods",
	})
	if err != nil {
		// the pending entry stays behind; the sweeper expires it eventually
		l.Error().Err(err).Str("tran_id", tranID).Msg("Session create failed")
		return "", apperr.ErrGatewayUnavailable
	}
	if res.Status != sslcommerz.SessionStatusSuccess {
		l.Error().Str("tran_id", tranID).Str("session_status", res.Status).Str("reason", res.FailedReason).Msg("Session declined")
		return "", apperr.ErrGatewayUnavailable
	}

	metrics.PaymentsInitiated.Inc()
	l.Info().Str("tran_id", tranID).Str("gateway", g.Name).Msg("Payment session created")

	return res.GatewayPageURL, nil
}

type RedirectOutcome string

const (
	RedirectSuccess RedirectOutcome = "success"
	RedirectFail    RedirectOutcome = "fail"
	RedirectCancel  RedirectOutcome = "cancel"
)

// HandleRedirect processes a browser return from the hosted page and returns
// the client status page to send the user to. Redirects are user-controlled
// and cosmetic; only the fail outcome gets a best-effort reject, settlement
// authority stays with the IPN.
func (s *Service) HandleRedirect(ctx context.Context, tranID string, outcome RedirectOutcome) string {
	l := logger.Get(ctx, s).With().Str("method", "HandleRedirect").Str("tran_id", tranID).Logger()

	if outcome == RedirectFail {
		err := s.transactions.SettleByTranID(ctx, tranID,
			model.TransactionStatusPending, model.TransactionStatusRejected, "")
		if err == nil {
			metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
			s.announce(ctx, tranID)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			l.Error().Err(err).Msg("Best-effort reject failed")
		}
	}

	return s.clientBaseURL + "/payment/" + string(outcome)
}

type Notification struct {
	TranID string
	Status string
	ValID  string
	Amount decimal.Decimal
}

// HandleIPN settles a top-up from the gateway's asynchronous notification.
// Exactly-once in effect: the status transition happens through a conditional
// write keyed on the pending state, so replayed or racing notifications
// settle nothing and report success.
func (s *Service) HandleIPN(ctx context.Context, n Notification) error {
	l := logger.Get(ctx, s).With().Str("method", "HandleIPN").Str("tran_id", n.TranID).Logger()

	if n.TranID == "" {
		return apperr.ErrInvalidInput
	}

	if n.Status != NotificationStatusValid {
		// terminal negative; answer success either way so the gateway stops retrying
		err := s.transactions.SettleByTranID(ctx, n.TranID,
			model.TransactionStatusPending, model.TransactionStatusRejected, "")
		if err == nil {
			metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
			s.announce(ctx, n.TranID)
		}
		l.Info().Str("declared_status", n.Status).Msg("Negative notification")
		return nil
	}

	t, err := s.transactions.ReadByTranID(ctx, n.TranID)
	if err != nil {
		return err
	}

	if t.Status != model.TransactionStatusPending {
		l.Info().Str("status", string(t.Status)).Msg("Already settled, duplicate notification")
		return nil
	}

	g, err := s.gateways.ReadByName(ctx, t.GatewayName)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrGatewayMisconfigured
		}
		return fmt.Errorf("gateway lookup: %w", err)
	}

	v, err := s.client.ValidatePayment(ctx, credentials(g), n.ValID)
	if err != nil {
		return fmt.Errorf("validate payment: %w", err)
	}

	if !v.Valid() {
		s.reject(ctx, n.TranID, "IPN Validation Failed")
		return apperr.ErrValidationFailed
	}

	if !t.Amount.Equal(n.Amount) {
		l.Warn().
			Str("recorded_amount", t.Amount.String()).
			Str("paid_amount", n.Amount.String()).
			Msg("Amount mismatch")
		s.reject(ctx, n.TranID, "Amount Mismatch")
		return apperr.ErrAmountMismatch
	}

	err = s.transactions.SettleByTranID(ctx, n.TranID,
		model.TransactionStatusPending, model.TransactionStatusApproved, "")
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// lost the race to a concurrent settlement
			l.Info().Msg("Settled concurrently")
			return nil
		}
		return fmt.Errorf("settle: %w", err)
	}

	metrics.PaymentsSettled.WithLabelValues("approved").Inc()
	s.announce(ctx, n.TranID)
	l.Info().Msg("Top-up approved")

	return nil
}

func (s *Service) reject(ctx context.Context, tranID, description string) {
	err := s.transactions.SettleByTranID(ctx, tranID,
		model.TransactionStatusPending, model.TransactionStatusRejected, description)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Error().Err(err).Str("tran_id", tranID).Msg("Reject failed")
		}
		return
	}

	metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
	s.announce(ctx, tranID)
}

func (s *Service) announce(ctx context.Context, tranID string) {
	t, err := s.transactions.ReadByTranID(ctx, tranID)
	if err != nil {
		return
	}
	s.feed.WalletChanged(ctx, t)
}

func credentials(g *model.PaymentGateway) sslcommerz.Credentials {
	return sslcommerz.Credentials{
		StoreID:     g.StoreID,
		StoreSecret: g.StoreSecret,
		BaseURL:     g.APIBaseURL,
	}
}
