package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	walletsvc "topupmart/internal/app/service/wallet"
)

type WalletHandler struct {
	wallet *walletsvc.Service
}

func NewWalletHandler(svc *walletsvc.Service) *WalletHandler {
	return &WalletHandler{
		wallet: svc,
	}
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.Balance")
	l.Debug().Send()

	u, err := ReadContextUser(ctx)
	if err != nil {
		l.Debug().Err(err).Msg("Unauthorized")
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	b, err := h.wallet.Balance(ctx, u.ID)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	out := struct {
		Balance decimal.Decimal `json:"balance"`
	}{b}

	l.Debug().Msgf("sending balance %s", jsonString(out))
	WriteResponse(w, out, http.StatusOK)
}

func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.List")
	l.Debug().Send()

	u, err := ReadContextUser(ctx)
	if err != nil {
		l.Debug().Err(err).Msg("Unauthorized")
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	mm, err := h.wallet.History(ctx, u.ID)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	if len(mm) == 0 {
		WriteResponse(w, struct{}{}, http.StatusNoContent)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

func (h *WalletHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.ListAll")
	l.Debug().Send()

	mm, err := h.wallet.All(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

func (h *WalletHandler) SetTopUpStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.SetTopUpStatus")
	l.Debug().Send()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	in := struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	if err := h.wallet.SetTopUpStatus(ctx, id, model.TransactionStatus(in.Status)); err != nil {
		l.Debug().Err(err).Str("transaction_id", id.String()).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, struct{}{}, http.StatusOK)
}

func (h *WalletHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.Adjust")
	l.Debug().Send()

	in := struct {
		UserID   string          `json:"userId" validate:"required,uuid"`
		UserName string          `json:"userName" validate:"required"`
		Amount   decimal.Decimal `json:"amount"`
		Reason   string          `json:"reason" validate:"required"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	t, err := h.wallet.AdjustBalance(ctx, userID, in.UserName, in.Amount, in.Reason)
	if err != nil {
		l.Debug().Err(err).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, t, http.StatusCreated)
}
