package ports

import (
	"context"
	"time"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// UserRepository is the identity source: it persists users and hands back
// records whose role and permissions have already been validated.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateRole persists the role together with its recomputed permission snapshot.
	UpdateRole(ctx context.Context, user *domain.User) error
}

// UserCache keeps recently loaded users close to the auth middleware.
//
// Every user has a version that Invalidate bumps. Callers read Version before
// loading the record from the repository and hand it back to Set; Set stores
// nothing and reports false when the version moved in between, so a reader
// racing a role change cannot put the old record back.
type UserCache interface {
	Get(ctx context.Context, id int64) (*domain.User, bool, error)
	Version(ctx context.Context, id int64) (int64, error)
	Set(ctx context.Context, user *domain.User, version int64) (bool, error)
	Invalidate(ctx context.Context, id int64) error
}

// TokenRevoker records tokens that were explicitly logged out.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
