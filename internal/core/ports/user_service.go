package ports

import (
	"context"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// CreateUserInput carries an already-validated role.
type CreateUserInput struct {
	Email    string
	Name     string
	Role     domain.Role
	Password string
}

type UserService interface {
	Create(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error)
	ChangeRole(ctx context.Context, actor *domain.User, userID int64, role domain.Role) (*domain.User, error)
}
