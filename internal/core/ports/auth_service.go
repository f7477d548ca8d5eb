package ports

import (
	"context"
	"time"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// TokenClaims is what the auth middleware learns from a verified token.
type TokenClaims struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Authenticate verifies a bearer token and resolves its user.
	Authenticate(ctx context.Context, token string) (*domain.User, *TokenClaims, error)
	Logout(ctx context.Context, claims *TokenClaims) error
}
