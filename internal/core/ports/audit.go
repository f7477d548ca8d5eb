package ports

import (
	"context"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

// AuditRepository persists audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditService records a single audit entry.
type AuditService interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// AuditSink accepts audit entries without blocking the request path for long.
type AuditSink interface {
	Enqueue(entry domain.AuditEntry)
}
