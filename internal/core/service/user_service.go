package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

// UserService administers accounts. Every operation requires manage_users.
type UserService struct {
	repo  ports.UserRepository
	cache ports.UserCache
	audit ports.AuditSink
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(repo ports.UserRepository, cache ports.UserCache, audit ports.AuditSink, log zerolog.Logger) *UserService {
	return &UserService{
		repo:  repo,
		cache: cache,
		audit: audit,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new user whose permissions are derived from its role.
func (s *UserService) Create(ctx context.Context, actor *domain.User, in ports.CreateUserInput) (*domain.User, error) {
	if !domain.HasPermission(actor, domain.PermManageUsers) {
		return nil, domain.ErrForbidden
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("create user: %w", domain.ErrUnknownRole)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := domain.NewUser(in.Email, in.Name, in.Role, s.now())
	user.PasswordHash = string(hash)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(actor, "create", created.ID)
	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Int64("actor_id", actor.ID).Msg("user created")
	return created, nil
}

// ChangeRole moves a user to a new role and persists the recomputed
// permission snapshot. The cached copy is dropped so the next request sees it.
func (s *UserService) ChangeRole(ctx context.Context, actor *domain.User, userID int64, role domain.Role) (*domain.User, error) {
	if !domain.HasPermission(actor, domain.PermManageUsers) {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, fmt.Errorf("change role: %w", domain.ErrUnknownRole)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.Role
	user.SetRole(role, s.now())
	if err := s.repo.UpdateRole(ctx, user); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to invalidate cached user")
	}

	s.record(actor, "change_role", user.ID)
	s.log.Info().
		Int64("user_id", user.ID).
		Str("from", string(previous)).
		Str("to", string(role)).
		Int64("actor_id", actor.ID).
		Msg("user role changed")
	return user, nil
}

func (s *UserService) record(actor *domain.User, action string, id int64) {
	s.audit.Enqueue(domain.AuditEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		Resource:   "user",
		ResourceID: id,
		At:         s.now(),
	})
}

func hashPassword(password string) ([]byte, error) {
	if len(password) > domain.MaxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, domain.ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
