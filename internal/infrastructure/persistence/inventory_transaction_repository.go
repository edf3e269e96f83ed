package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// The ledger table is append-only; this repository exposes no update or
// delete operations.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	var tx inventory.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByCode finds a transaction by its code
func (r *GormTransactionRepository) FindByCode(ctx context.Context, code string) (*inventory.Transaction, error) {
	var tx inventory.Transaction
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByPartID finds transactions for a part, newest first
func (r *GormTransactionRepository) FindByPartID(ctx context.Context, partID uuid.UUID, filter shared.Filter) ([]inventory.Transaction, error) {
	var txs []inventory.Transaction
	query := r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("part_id = ?", partID)
	if filter.OrderBy == "" {
		filter.OrderBy = "transaction_date"
	}
	if err := applyFilter(query, filter, TransactionSortFields).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByReference finds transactions linked to a source document
func (r *GormTransactionRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID string) ([]inventory.Transaction, error) {
	var txs []inventory.Transaction
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("transaction_date ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindAll finds transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.Transaction, error) {
	var txs []inventory.Transaction
	query := r.applyTransactionFilter(r.db.WithContext(ctx).Model(&inventory.Transaction{}), filter)
	if filter.OrderBy == "" {
		filter.OrderBy = "transaction_date"
	}
	if err := applyFilter(query, filter.Filter, TransactionSortFields).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Create appends a ledger entry
func (r *GormTransactionRepository) Create(ctx context.Context, tx *inventory.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// CreateBatch appends multiple ledger entries in one statement
func (r *GormTransactionRepository) CreateBatch(ctx context.Context, txs []*inventory.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(txs).Error
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter inventory.TransactionFilter) (int64, error) {
	var count int64
	query := r.applyTransactionFilter(r.db.WithContext(ctx).Model(&inventory.Transaction{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPartID counts ledger entries for a part
func (r *GormTransactionRepository) CountByPartID(ctx context.Context, partID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("part_id = ?", partID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumSignedQuantityByPartID recomputes the net on-hand quantity for a part
// from the full ledger history. Every entry records the on-hand quantity
// before and after the movement, so the signed change is after minus before
// for all types, including record-only ones where the two are equal.
func (r *GormTransactionRepository) SumSignedQuantityByPartID(ctx context.Context, partID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&inventory.Transaction{}).
		Where("part_id = ?", partID).
		Select("COALESCE(SUM(after_qty - before_qty), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// applyTransactionFilter applies the ledger-specific filter predicates
func (r *GormTransactionRepository) applyTransactionFilter(query *gorm.DB, filter inventory.TransactionFilter) *gorm.DB {
	if filter.PartID != nil {
		query = query.Where("part_id = ?", *filter.PartID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.ReferenceID != "" {
		query = query.Where("reference_id = ?", filter.ReferenceID)
	}
	if filter.DateFrom != nil {
		query = query.Where("transaction_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("transaction_date <= ?", *filter.DateTo)
	}
	return query
}
