package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/service/payment"
)

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{
		payments: svc,
	}
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Payment.Initiate")
	l.Debug().Send()

	u, err := ReadContextUser(ctx)
	if err != nil {
		l.Debug().Err(err).Msg("Unauthorized")
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	in := struct {
		Amount    decimal.Decimal `json:"amount"`
		GatewayID string          `json:"gatewayId" validate:"required,uuid"`
	}{}

	if err := readBody(r, &in); err != nil {
		l.Debug().Err(err).Msg("Body read failed")
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	gatewayID, err := uuid.Parse(in.GatewayID)
	if err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	url, err := h.payments.Initiate(ctx, payment.InitiateInput{
		Amount:    in.Amount,
		GatewayID: gatewayID,
		UserID:    u.ID,
		UserName:  u.Name,
		UserEmail: u.Email,
	})
	if err != nil {
		l.Debug().Err(err).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	out := struct {
		GatewayPageURL string `json:"gatewayPageUrl"`
	}{url}

	WriteResponse(w, out, http.StatusOK)
}

// Redirect builds the handler for one browser-return outcome. The gateway
// posts the browser back here; we bounce it to the client status page.
func (h *PaymentHandler) Redirect(outcome payment.RedirectOutcome) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := logger.Get(ctx, "Handler.Payment.Redirect")

		tranID := chi.URLParam(r, "tranID")
		l.Debug().Str("tran_id", tranID).Str("outcome", string(outcome)).Send()

		url := h.payments.HandleRedirect(ctx, tranID, outcome)
		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}

func (h *PaymentHandler) IPN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Payment.IPN")
	l.Debug().Send()

	if err := r.ParseForm(); err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(r.PostFormValue("amount"))
	if err != nil && r.PostFormValue("amount") != "" {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	n := payment.Notification{
		TranID: r.PostFormValue("tran_id"),
		Status: r.PostFormValue("status"),
		ValID:  r.PostFormValue("val_id"),
		Amount: amount,
	}

	err = h.payments.HandleIPN(ctx, n)
	if err != nil {
		l.Debug().Err(err).Str("tran_id", n.TranID).Send()

		if errors.Is(err, apperr.ErrValidationFailed) || errors.Is(err, apperr.ErrAmountMismatch) {
			// settled as rejected; tell the gateway not to retry
			WriteError(w, err, http.StatusBadRequest)
			return
		}
		if errors.Is(err, apperr.ErrNotFound) {
			WriteError(w, err, http.StatusNotFound)
			return
		}
		if errors.Is(err, apperr.ErrInvalidInput) {
			WriteError(w, err, http.StatusBadRequest)
			return
		}
		if errors.Is(err, apperr.ErrGatewayMisconfigured) {
			WriteError(w, err, http.StatusInternalServerError)
			return
		}

		// transient: the gateway retries the notification later
		WriteError(w, err, http.StatusBadGateway)
		return
	}

	out := struct {
		Status string `json:"status"`
	}{"received"}

	WriteResponse(w, out, http.StatusOK)
}
