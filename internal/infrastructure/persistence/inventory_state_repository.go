package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// GormInventoryStateRepository implements InventoryStateRepository using GORM
type GormInventoryStateRepository struct {
	db *gorm.DB
}

// NewGormInventoryStateRepository creates a new GormInventoryStateRepository
func NewGormInventoryStateRepository(db *gorm.DB) *GormInventoryStateRepository {
	return &GormInventoryStateRepository{db: db}
}

// FindByID finds a state row by its ID
func (r *GormInventoryStateRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryState, error) {
	var state inventory.InventoryState
	if err := r.db.WithContext(ctx).First(&state, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

// FindByPartID finds the state row for a part
func (r *GormInventoryStateRepository) FindByPartID(ctx context.Context, partID uuid.UUID) (*inventory.InventoryState, error) {
	var state inventory.InventoryState
	if err := r.db.WithContext(ctx).
		Where("part_id = ?", partID).
		First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

// FindByPartIDs finds state rows for multiple parts
func (r *GormInventoryStateRepository) FindByPartIDs(ctx context.Context, partIDs []uuid.UUID) ([]inventory.InventoryState, error) {
	if len(partIDs) == 0 {
		return []inventory.InventoryState{}, nil
	}
	var states []inventory.InventoryState
	if err := r.db.WithContext(ctx).
		Where("part_id IN ?", partIDs).
		Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// GetOrCreate returns the state row for a part, creating a zero row when
// none exists yet. Creation uses an upsert so two concurrent callers for
// the same part converge on a single row instead of failing on the unique
// index.
func (r *GormInventoryStateRepository) GetOrCreate(ctx context.Context, partID uuid.UUID) (*inventory.InventoryState, error) {
	state, err := r.FindByPartID(ctx, partID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewInventoryState(partID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "part_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	// Re-read so the loser of a concurrent create sees the winner's row.
	return r.FindByPartID(ctx, partID)
}

// searchScope narrows a state query to parts whose code or name matches
// the search term. Count must apply the same scope as FindAll so the
// pagination total stays in step with the page contents.
func (r *GormInventoryStateRepository) searchScope(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := "%" + filter.Search + "%"
	return query.
		Select("inventory_states.*").
		Joins("JOIN parts ON parts.id = inventory_states.part_id").
		Where("parts.code ILIKE ? OR parts.name ILIKE ?", pattern, pattern)
}

// FindAll finds state rows matching the filter
func (r *GormInventoryStateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryState, error) {
	var states []inventory.InventoryState
	query := r.searchScope(r.db.WithContext(ctx).Model(&inventory.InventoryState{}), filter)
	if err := applyFilter(query, filter, CommonSortFields).Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// Save creates or updates a state row
func (r *GormInventoryStateRepository) Save(ctx context.Context, state *inventory.InventoryState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryStateRepository) SaveWithLock(ctx context.Context, state *inventory.InventoryState) error {
	result := r.db.WithContext(ctx).
		Model(state).
		Where("id = ? AND version = ?", state.ID, state.Version-1).
		Updates(map[string]interface{}{
			"current_qty":  state.CurrentQty,
			"reserved_qty": state.ReservedQty,
			"incoming_qty": state.IncomingQty,
			"version":      state.Version,
			"updated_at":   state.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts state rows matching the filter
func (r *GormInventoryStateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.searchScope(r.db.WithContext(ctx).Model(&inventory.InventoryState{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
