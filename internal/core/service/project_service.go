package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandwichproject/admin-api/internal/api/metrics"
	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

type ProjectService struct {
	repo   ports.ProjectRepository
	audit  ports.AuditSink
	logger zerolog.Logger
	now    func() time.Time
}

func NewProjectService(repo ports.ProjectRepository, audit ports.AuditSink, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProjectService) List(ctx context.Context, actor *domain.User, filter ports.ListProjectsFilter) ([]*domain.Project, error) {
	if !domain.HasPermission(actor, domain.PermViewProjects) {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx, filter)
}

func (s *ProjectService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Project, error) {
	if !domain.HasPermission(actor, domain.PermViewProjects) {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, id)
}

// Create stores a new project. Status defaults to planning and priority to medium.
func (s *ProjectService) Create(ctx context.Context, actor *domain.User, in ports.CreateProjectInput) (*domain.Project, error) {
	if !domain.HasPermission(actor, domain.PermEditData) {
		return nil, domain.ErrForbidden
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidProject)
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Project{
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create project")
		return nil, err
	}

	metrics.ProjectMutationsTotal.WithLabelValues("create").Inc()
	s.record(actor, "create", p.ID)
	s.logger.Info().Int64("project_id", p.ID).Int64("actor_id", actor.ID).Msg("project created")
	return p, nil
}

// Update applies the non-nil fields of in to the stored project.
func (s *ProjectService) Update(ctx context.Context, actor *domain.User, id int64, in ports.UpdateProjectInput) (*domain.Project, error) {
	if !domain.HasPermission(actor, domain.PermEditData) {
		return nil, domain.ErrForbidden
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidProject)
		}
		p.Title = title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		if p.Status, err = parseStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.Priority != nil {
		if p.Priority, err = parsePriority(*in.Priority); err != nil {
			return nil, err
		}
	}
	if in.DueDate != nil {
		p.DueDate = *in.DueDate
	}
	if in.AssignedTo != nil {
		p.AssignedTo = in.AssignedTo
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	metrics.ProjectMutationsTotal.WithLabelValues("update").Inc()
	s.record(actor, "update", p.ID)
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if !domain.HasPermission(actor, domain.PermDeleteData) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ProjectMutationsTotal.WithLabelValues("delete").Inc()
	s.record(actor, "delete", id)
	s.logger.Info().Int64("project_id", id).Int64("actor_id", actor.ID).Msg("project deleted")
	return nil
}

func (s *ProjectService) record(actor *domain.User, action string, id int64) {
	s.audit.Enqueue(domain.AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		Resource:   "project",
		ResourceID: id,
		At:         s.now(),
	})
}

func parseStatus(s string) (domain.ProjectStatus, error) {
	switch st := domain.ProjectStatus(s); st {
	case "":
		return domain.ProjectPlanning, nil
	case domain.ProjectPlanning, domain.ProjectActive, domain.ProjectCompleted, domain.ProjectOnHold:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrInvalidProject, s)
	}
}

func parsePriority(s string) (domain.ProjectPriority, error) {
	switch pr := domain.ProjectPriority(s); pr {
	case "":
		return domain.PriorityMedium, nil
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		return pr, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidProject, s)
	}
}
