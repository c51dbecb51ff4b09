package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	"topupmart/internal/app/service/orders"
	"topupmart/internal/app/storage"
)

type OrderHandler struct {
	orders *orders.Service
	store  storage.OrderRepository
}

func NewOrderHandler(svc *orders.Service, store storage.OrderRepository) *OrderHandler {
	return &OrderHandler{
		orders: svc,
		store:  store,
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Order.Create")
	l.Debug().Send()

	u, err := ReadContextUser(ctx)
	if err != nil {
		l.Debug().Err(err).Msg("Unauthorized")
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	in := struct {
		Product string          `json:"product" validate:"required,min=1,max=128"`
		Amount  decimal.Decimal `json:"amount"`
	}{}

	if err := readBody(r, &in); err != nil {
		l.Debug().Err(err).Msg("Body read failed")
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	o, err := h.orders.PlacePurchase(ctx, orders.PurchaseInput{
		UserID:   u.ID,
		UserName: u.Name,
		Product:  in.Product,
		Amount:   in.Amount,
	})
	if err != nil {
		l.Debug().Err(err).Str("product", in.Product).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, o, http.StatusCreated)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Order.List")
	l.Debug().Send()

	u, err := ReadContextUser(ctx)
	if err != nil {
		l.Debug().Err(err).Msg("Unauthorized")
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	mm, err := h.store.AllByUserID(ctx, u.ID)
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

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Order.ListAll")
	l.Debug().Send()

	mm, err := h.store.All(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Order.SetStatus")
	l.Debug().Send()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	in := struct {
		Status string `json:"status" validate:"required,oneof=processing completed failed"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	if err := h.orders.SetStatus(ctx, id, model.OrderStatus(in.Status)); err != nil {
		l.Debug().Err(err).Str("order_id", id.String()).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	o, err := h.store.Read(ctx, id)
	if err != nil {
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, o, http.StatusOK)
}
