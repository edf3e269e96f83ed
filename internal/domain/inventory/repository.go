package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// InventoryStateRepository defines the interface for stock state persistence
type InventoryStateRepository interface {
	// FindByID finds a state row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryState, error)

	// FindByPartID finds the state row for a part
	FindByPartID(ctx context.Context, partID uuid.UUID) (*InventoryState, error)

	// FindByPartIDs finds state rows for multiple parts
	FindByPartIDs(ctx context.Context, partIDs []uuid.UUID) ([]InventoryState, error)

	// GetOrCreate returns the state row for a part, creating a zero row
	// when none exists yet
	GetOrCreate(ctx context.Context, partID uuid.UUID) (*InventoryState, error)

	// FindAll finds state rows matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryState, error)

	// Save creates or updates a state row
	Save(ctx context.Context, state *InventoryState) error

	// SaveWithLock updates a state row with optimistic concurrency control.
	// Returns shared.ErrConcurrencyConflict when the stored version moved.
	SaveWithLock(ctx context.Context, state *InventoryState) error

	// Count counts state rows matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// TransactionFilter narrows ledger queries
type TransactionFilter struct {
	shared.Filter
	PartID        *uuid.UUID
	Type          *TransactionType
	ReferenceType *ReferenceType
	ReferenceID   string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// TransactionRepository defines the interface for ledger persistence.
// The ledger is append-only; there are no update or delete operations.
type TransactionRepository interface {
	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByCode finds a transaction by its code
	FindByCode(ctx context.Context, code string) (*Transaction, error)

	// FindByPartID finds transactions for a part, newest first
	FindByPartID(ctx context.Context, partID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// FindByReference finds transactions linked to a source document
	FindByReference(ctx context.Context, refType ReferenceType, refID string) ([]Transaction, error)

	// FindAll finds transactions matching the filter
	FindAll(ctx context.Context, filter TransactionFilter) ([]Transaction, error)

	// Create appends a ledger entry
	Create(ctx context.Context, tx *Transaction) error

	// CreateBatch appends multiple ledger entries
	CreateBatch(ctx context.Context, txs []*Transaction) error

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter TransactionFilter) (int64, error)

	// CountByPartID counts ledger entries for a part
	CountByPartID(ctx context.Context, partID uuid.UUID) (int64, error)

	// SumSignedQuantityByPartID recomputes the net on-hand quantity for a
	// part from the full ledger history
	SumSignedQuantityByPartID(ctx context.Context, partID uuid.UUID) (decimal.Decimal, error)
}
