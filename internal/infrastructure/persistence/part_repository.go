package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/catalog"
	"github.com/mims/backend/internal/domain/shared"
)

// GormPartRepository implements PartRepository using GORM
type GormPartRepository struct {
	db *gorm.DB
}

// NewGormPartRepository creates a new GormPartRepository
func NewGormPartRepository(db *gorm.DB) *GormPartRepository {
	return &GormPartRepository{db: db}
}

// FindByID finds a part by its ID
func (r *GormPartRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Part, error) {
	var part catalog.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByCode finds a part by its code. Codes are stored uppercase, so the
// lookup normalizes before comparing.
func (r *GormPartRepository) FindByCode(ctx context.Context, code string) (*catalog.Part, error) {
	var part catalog.Part
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByName finds a part by exact name, case-insensitively
func (r *GormPartRepository) FindByName(ctx context.Context, name string) (*catalog.Part, error) {
	var part catalog.Part
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByIDs finds multiple parts by their IDs
func (r *GormPartRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Part, error) {
	if len(ids) == 0 {
		return []catalog.Part{}, nil
	}
	var parts []catalog.Part
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// FindByCodes finds multiple parts by their codes
func (r *GormPartRepository) FindByCodes(ctx context.Context, codes []string) ([]catalog.Part, error) {
	if len(codes) == 0 {
		return []catalog.Part{}, nil
	}
	normalized := make([]string, len(codes))
	for i, code := range codes {
		normalized[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	var parts []catalog.Part
	if err := r.db.WithContext(ctx).Where("code IN ?", normalized).Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// FindAll finds all parts matching the filter
func (r *GormPartRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Part, error) {
	var parts []catalog.Part
	query := r.db.WithContext(ctx).Model(&catalog.Part{})
	query = r.applySearch(query, filter)
	if err := applyFilter(query, filter, PartSortFields).Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// FindActive finds all active parts matching the filter
func (r *GormPartRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Part, error) {
	var parts []catalog.Part
	query := r.db.WithContext(ctx).Model(&catalog.Part{}).
		Where("status = ?", catalog.PartStatusActive)
	query = r.applySearch(query, filter)
	if err := applyFilter(query, filter, PartSortFields).Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// Save creates or updates a part
func (r *GormPartRepository) Save(ctx context.Context, part *catalog.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormPartRepository) SaveWithLock(ctx context.Context, part *catalog.Part) error {
	result := r.db.WithContext(ctx).
		Model(part).
		Where("id = ? AND version = ?", part.ID, part.Version-1).
		Updates(map[string]interface{}{
			"code":          part.Code,
			"name":          part.Name,
			"specification": part.Specification,
			"unit":          part.Unit,
			"category":      part.Category,
			"safety_stock":  part.SafetyStock,
			"min_order_qty": part.MinOrderQty,
			"unit_price":    part.UnitPrice,
			"status":        part.Status,
			"notes":         part.Notes,
			"version":       part.Version,
			"updated_at":    part.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveBatch creates or updates multiple parts in one transaction
func (r *GormPartRepository) SaveBatch(ctx context.Context, parts []*catalog.Part) error {
	if len(parts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, part := range parts {
			if err := tx.Save(part).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count counts parts matching the filter
func (r *GormPartRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.Part{})
	query = r.applySearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks whether a part with the given code exists
func (r *GormPartRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Part{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applySearch matches the search term against code and name
func (r *GormPartRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", term, term)
	}
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	return query
}
