package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByCode finds a supplier by its code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// FindByName finds a supplier by exact name, case-insensitively
	FindByName(ctx context.Context, name string) (*Supplier, error)

	// FindByNames finds multiple suppliers by their names
	FindByNames(ctx context.Context, names []string) ([]Supplier, error)

	// FindAll finds all suppliers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// SaveBatch creates or updates multiple suppliers
	SaveBatch(ctx context.Context, suppliers []*Supplier) error

	// Count counts suppliers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
