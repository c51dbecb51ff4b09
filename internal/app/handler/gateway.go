package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	"topupmart/internal/app/storage"
)

type GatewayHandler struct {
	gateways storage.GatewayRepository
}

func NewGatewayHandler(gateways storage.GatewayRepository) *GatewayHandler {
	return &GatewayHandler{
		gateways: gateways,
	}
}

// ListEnabled returns the gateways a user can pick from. Secrets never leave
// the model's json encoding.
func (h *GatewayHandler) ListEnabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Gateway.ListEnabled")
	l.Debug().Send()

	mm, err := h.gateways.All(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	enabled := make([]*model.PaymentGateway, 0, len(mm))
	for _, g := range mm {
		if g.Enabled {
			enabled = append(enabled, g)
		}
	}

	WriteResponse(w, enabled, http.StatusOK)
}

func (h *GatewayHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Gateway.ListAll")
	l.Debug().Send()

	mm, err := h.gateways.All(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	WriteResponse(w, mm, http.StatusOK)
}

type gatewayInput struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
	StoreID     string `json:"storeId" validate:"required"`
	StoreSecret string `json:"storeSecret" validate:"required"`
	APIBaseURL  string `json:"apiBaseUrl" validate:"required,url"`
	Enabled     bool   `json:"enabled"`
}

func (h *GatewayHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Gateway.Create")
	l.Debug().Send()

	in := gatewayInput{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	g, err := h.gateways.Create(ctx, &model.PaymentGateway{
		Name:        in.Name,
		LogoURL:     in.LogoURL,
		StoreID:     in.StoreID,
		StoreSecret: in.StoreSecret,
		APIBaseURL:  in.APIBaseURL,
		Enabled:     in.Enabled,
	})
	if err != nil {
		l.Debug().Err(err).Str("name", in.Name).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, g, http.StatusCreated)
}

func (h *GatewayHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Gateway.Update")
	l.Debug().Send()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	in := gatewayInput{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	g, err := h.gateways.Update(ctx, &model.PaymentGateway{
		ID:          id,
		Name:        in.Name,
		LogoURL:     in.LogoURL,
		StoreID:     in.StoreID,
		StoreSecret: in.StoreSecret,
		APIBaseURL:  in.APIBaseURL,
		Enabled:     in.Enabled,
	})
	if err != nil {
		l.Debug().Err(err).Str("gateway_id", id.String()).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, g, http.StatusOK)
}

func (h *GatewayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Gateway.Delete")
	l.Debug().Send()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	if err := h.gateways.Delete(ctx, id); err != nil {
		l.Debug().Err(err).Str("gateway_id", id.String()).Send()
		WriteError(w, err, statusFor(err))
		return
	}

	WriteResponse(w, struct{}{}, http.StatusOK)
}
