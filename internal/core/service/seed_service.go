package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

// SeedInput describes the development fixtures.
type SeedInput struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// Seeder loads the development fixtures: one administrator and the two
// starter projects. It is idempotent.
type Seeder struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewSeeder(users ports.UserRepository, projects ports.ProjectRepository, log zerolog.Logger) *Seeder {
	return &Seeder{
		users:    users,
		projects: projects,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Seeder) Seed(ctx context.Context, in SeedInput) error {
	if in.AdminPassword == "" {
		s.log.Info().Msg("seed skipped: no admin password configured")
		return nil
	}

	admin, err := s.ensureAdmin(ctx, in)
	if err != nil {
		return err
	}
	return s.ensureProjects(ctx, admin.ID)
}

func (s *Seeder) ensureAdmin(ctx context.Context, in SeedInput) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(in.AdminEmail))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	hash, err := hashPassword(in.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	admin := domain.NewUser(in.AdminEmail, in.AdminName, domain.RoleAdmin, s.now())
	admin.PasswordHash = string(hash)

	created, err := s.users.Create(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("seeded admin user")
	return created, nil
}

func (s *Seeder) ensureProjects(ctx context.Context, ownerID int64) error {
	existing, err := s.projects.List(ctx, ports.ListProjectsFilter{})
	if err != nil {
		return fmt.Errorf("seed projects: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := s.now()
	for _, p := range starterProjects(ownerID, now) {
		if err := s.projects.Create(ctx, p); err != nil {
			return fmt.Errorf("seed projects: %w", err)
		}
	}
	s.log.Info().Msg("seeded starter projects")
	return nil
}

func starterProjects(ownerID int64, now time.Time) []*domain.Project {
	return []*domain.Project{
		{
			Title:       "Summer Food Safety Training",
			Description: "Implement comprehensive food safety training for all volunteers",
			Status:      domain.ProjectActive,
			Priority:    domain.PriorityHigh,
			DueDate:     "2025-08-01",
			AssignedTo:  &ownerID,
			Category:    "Training",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Volunteer Recruitment Drive",
			Description: "Increase volunteer base by 25% before fall season",
			Status:      domain.ProjectPlanning,
			Priority:    domain.PriorityMedium,
			DueDate:     "2025-09-15",
			AssignedTo:  &ownerID,
			Category:    "Recruitment",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
