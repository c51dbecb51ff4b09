package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"topupmart/internal/app/handler"
	"topupmart/internal/app/model"
	"topupmart/internal/app/session"
)

type fakeReader struct {
	user *model.User
}

func (f *fakeReader) Read(_ context.Context, token string) (*model.User, error) {
	if f.user != nil && token == "good" {
		return f.user, nil
	}
	return nil, session.ErrInvalidToken
}

func TestAuth(t *testing.T) {
	u := &model.User{ID: uuid.New(), Name: "alice"}
	mw := Auth(&fakeReader{user: u})

	var got *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = handler.ReadContextUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tt := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "good", http.StatusUnauthorized},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodGet, "/api/wallet/balance", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			mw(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, u, got)
			}
		})
	}
}

func TestAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tt := []struct {
		name string
		user *model.User
		want int
	}{
		{"admin passes", &model.User{ID: uuid.New(), Name: "root", IsAdmin: true}, http.StatusOK},
		{"plain user rejected", &model.User{ID: uuid.New(), Name: "alice"}, http.StatusForbidden},
		{"no session rejected", nil, http.StatusUnauthorized},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			if tc.user != nil {
				req = req.WithContext(context.WithValue(req.Context(), handler.ContextKeyUser{}, tc.user))
			}
			rec := httptest.NewRecorder()

			Admin(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
