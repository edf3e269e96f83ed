package bulk

import (
	"context"

	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

// UploadLogRepository defines the interface for upload log persistence
type UploadLogRepository interface {
	// FindByID finds an upload log by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*UploadLog, error)

	// FindAll finds upload logs matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]UploadLog, error)

	// FindByType finds upload logs of the given type
	FindByType(ctx context.Context, uploadType UploadType, filter shared.Filter) ([]UploadLog, error)

	// Create appends an upload log
	Create(ctx context.Context, log *UploadLog) error

	// Count counts upload logs matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
