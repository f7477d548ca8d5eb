package ports

import (
	"context"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// CreateProjectInput carries the fields accepted on creation. Status and
// Priority fall back to planning / medium when empty.
type CreateProjectInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	AssignedTo  *int64
	Category    string
}

// UpdateProjectInput is a partial update: nil fields are left untouched.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	AssignedTo  *int64
	Category    *string
}

// ProjectService defines use-case operations for projects. The actor is the
// authenticated user; its permissions are checked again inside the service.
type ProjectService interface {
	List(ctx context.Context, actor *domain.User, filter ListProjectsFilter) ([]*domain.Project, error)
	Get(ctx context.Context, actor *domain.User, id int64) (*domain.Project, error)
	Create(ctx context.Context, actor *domain.User, input CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, actor *domain.User, id int64, input UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}
