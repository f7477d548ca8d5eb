package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit entry.
func (s *auditService) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.Action == "" || entry.Resource == "" {
		return fmt.Errorf("record audit entry: action and resource are required")
	}
	if err := s.repo.Insert(ctx, &entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	s.log.Debug().
		Int64("actor_id", entry.ActorID).
		Str("action", entry.Action).
		Str("resource", entry.Resource).
		Int64("resource_id", entry.ResourceID).
		Msg("audit entry recorded")
	return nil
}
