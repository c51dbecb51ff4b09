package session

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt"
	"topupmart/internal/app/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.StandardClaims
}

type Creator interface {
	// Create a session for the user, returns the signed token
	Create(ctx context.Context, u *model.User) (string, error)
}

type Reader interface {
	// Read the user behind a token
	Read(ctx context.Context, tokenString string) (*model.User, error)
}

type Manager interface {
	Creator
	Reader
}
