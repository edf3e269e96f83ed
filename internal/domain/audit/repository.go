package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

// AuditRepository defines the interface for audit persistence
type AuditRepository interface {
	// FindByID finds an audit by its ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*AuditRecord, error)

	// FindByCode finds an audit by its code, items included
	FindByCode(ctx context.Context, code string) (*AuditRecord, error)

	// FindByItemID finds the audit owning the given item
	FindByItemID(ctx context.Context, itemID uuid.UUID) (*AuditRecord, error)

	// FindAll finds audits matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]AuditRecord, error)

	// FindByStatus finds audits in the given status
	FindByStatus(ctx context.Context, status AuditStatus, filter shared.Filter) ([]AuditRecord, error)

	// Save creates or updates an audit with its items
	Save(ctx context.Context, record *AuditRecord) error

	// SaveWithLock updates an audit with optimistic concurrency control
	SaveWithLock(ctx context.Context, record *AuditRecord) error

	// Count counts audits matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
