package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

// PartRepository defines the interface for part persistence
type PartRepository interface {
	// FindByID finds a part by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Part, error)

	// FindByCode finds a part by its code (codes are stored uppercase)
	FindByCode(ctx context.Context, code string) (*Part, error)

	// FindByName finds a part by exact name, case-insensitively
	FindByName(ctx context.Context, name string) (*Part, error)

	// FindByIDs finds multiple parts by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Part, error)

	// FindByCodes finds multiple parts by their codes
	FindByCodes(ctx context.Context, codes []string) ([]Part, error)

	// FindAll finds all parts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Part, error)

	// FindActive finds all active parts matching the filter
	FindActive(ctx context.Context, filter shared.Filter) ([]Part, error)

	// Save creates or updates a part
	Save(ctx context.Context, part *Part) error

	// SaveWithLock updates a part with optimistic concurrency control
	SaveWithLock(ctx context.Context, part *Part) error

	// SaveBatch creates or updates multiple parts
	SaveBatch(ctx context.Context, parts []*Part) error

	// Count counts parts matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks whether a part with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
