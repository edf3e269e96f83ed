package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/audit"
	"github.com/mims/backend/internal/domain/shared"
)

// GormAuditRepository implements AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// FindByID finds an audit by its ID, items included
func (r *GormAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.AuditRecord, error) {
	var record audit.AuditRecord
	if err := r.db.WithContext(ctx).Preload("Items").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByCode finds an audit by its code, items included
func (r *GormAuditRepository) FindByCode(ctx context.Context, code string) (*audit.AuditRecord, error) {
	var record audit.AuditRecord
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByItemID finds the audit owning the given item
func (r *GormAuditRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*audit.AuditRecord, error) {
	var item audit.AuditItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, item.AuditID)
}

// FindAll finds audits matching the filter
func (r *GormAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.AuditRecord, error) {
	var records []audit.AuditRecord
	query := r.db.WithContext(ctx).Model(&audit.AuditRecord{}).Preload("Items")
	if err := applyFilter(query, filter, AuditSortFields).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByStatus finds audits in the given status
func (r *GormAuditRepository) FindByStatus(ctx context.Context, status audit.AuditStatus, filter shared.Filter) ([]audit.AuditRecord, error) {
	var records []audit.AuditRecord
	query := r.db.WithContext(ctx).Model(&audit.AuditRecord{}).Preload("Items").
		Where("status = ?", status)
	if err := applyFilter(query, filter, AuditSortFields).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates an audit with its items
func (r *GormAuditRepository) Save(ctx context.Context, record *audit.AuditRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(record).Error; err != nil {
			return err
		}
		return r.saveItems(tx, record)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormAuditRepository) SaveWithLock(ctx context.Context, record *audit.AuditRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(record).
			Where("id = ? AND version = ?", record.ID, record.Version-1).
			Updates(map[string]interface{}{
				"code":              record.Code,
				"scope":             record.Scope,
				"audit_type":        record.AuditType,
				"audit_date":        record.AuditDate,
				"performer":         record.Performer,
				"total_items":       record.TotalItems,
				"matched_items":     record.MatchedItems,
				"discrepancy_items": record.DiscrepancyItems,
				"status":            record.Status,
				"completed_at":      record.CompletedAt,
				"approved_at":       record.ApprovedAt,
				"approved_by":       record.ApprovedBy,
				"version":           record.Version,
				"updated_at":        record.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveItems(tx, record)
	})
}

// Count counts audits matching the filter
func (r *GormAuditRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&audit.AuditRecord{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveItems replaces the stored item set with the aggregate's current items
func (r *GormAuditRepository) saveItems(tx *gorm.DB, record *audit.AuditRecord) error {
	currentItemIDs := make([]uuid.UUID, len(record.Items))
	for i, item := range record.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("audit_id = ? AND id NOT IN ?", record.ID, currentItemIDs).
			Delete(&audit.AuditItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("audit_id = ?", record.ID).
			Delete(&audit.AuditItem{}).Error; err != nil {
			return err
		}
	}

	for i := range record.Items {
		record.Items[i].AuditID = record.ID
		if err := tx.Save(&record.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
