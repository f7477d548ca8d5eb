package ports

import (
	"context"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// ListProjectsFilter narrows a project listing. Empty fields do not filter.
type ListProjectsFilter struct {
	Status   string
	Priority string
	Category string
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	List(ctx context.Context, filter ListProjectsFilter) ([]*domain.Project, error)
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	// Create assigns the next id and stores the project.
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}
