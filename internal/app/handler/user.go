package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"topupmart/internal/app/apperr"
	"topupmart/internal/app/logger"
	"topupmart/internal/app/model"
	"topupmart/internal/app/session"
	"topupmart/internal/app/storage"
)

type UserHandler struct {
	session session.Creator
	users   storage.UserRepository
}

func NewUserHandler(users storage.UserRepository, sm session.Creator) *UserHandler {
	return &UserHandler{
		session: sm,
		users:   users,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.User.Register")

	in := struct {
		Username string `json:"name" validate:"required,min=1,max=32,alphanum"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	u := &model.User{
		Name:     in.Username,
		Email:    in.Email,
		Password: in.Password,
	}

	u, err := h.users.Create(r.Context(), u)

	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			log.Debug().Err(err).Send()
			WriteError(w, err, http.StatusConflict)
			return
		}
		if errors.Is(err, apperr.ErrInvalidInput) {
			log.Debug().Err(err).Send()
			WriteError(w, err, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Send()
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	token, err := h.session.Create(r.Context(), u)
	if err != nil {
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	out := struct {
		Token string `json:"token"`
	}{token}

	w.Header().Add("Authorization", "Bearer "+token)

	WriteResponse(w, out, http.StatusOK)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	hlog.FromRequest(r).Debug().Msg("Handler.User.Login")

	in := struct {
		Username string `json:"name" validate:"required,min=1,max=32,alphanum"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	u, err := h.users.ReadByNameAndPassword(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			WriteError(w, apperr.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	token, err := h.session.Create(r.Context(), u)
	if err != nil {
		WriteError(w, err, http.StatusInternalServerError)
		return
	}

	out := struct {
		Token string `json:"token"`
	}{token}

	w.Header().Add("Authorization", "Bearer "+token)

	WriteResponse(w, out, http.StatusOK)
}
