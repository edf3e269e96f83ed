package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/order"
	"github.com/mims/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID, items included
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := r.db.WithContext(ctx).Preload("Items").First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindByCode finds a purchase order by its code, items included
func (r *GormPurchaseOrderRepository) FindByCode(ctx context.Context, code string) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindByCodes finds multiple purchase orders by their codes, items included
func (r *GormPurchaseOrderRepository) FindByCodes(ctx context.Context, codes []string) ([]order.PurchaseOrder, error) {
	if len(codes) == 0 {
		return []order.PurchaseOrder{}, nil
	}
	normalized := make([]string, len(codes))
	for i, code := range codes {
		normalized[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	var orders []order.PurchaseOrder
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("code IN ?", normalized).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	query := r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).Preload("Items")
	if err := applyFilter(query, filter, PurchaseOrderSortFields).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByStatus finds purchase orders in the given status
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, status order.PurchaseOrderStatus, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var orders []order.PurchaseOrder
	query := r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).Preload("Items").
		Where("status = ?", status)
	if err := applyFilter(query, filter, PurchaseOrderSortFields).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *order.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(po).Error; err != nil {
			return err
		}
		return r.saveItems(tx, po)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *order.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(po).
			Where("id = ? AND version = ?", po.ID, po.Version-1).
			Updates(map[string]interface{}{
				"code":          po.Code,
				"supplier_id":   po.SupplierID,
				"supplier_name": po.SupplierName,
				"order_date":    po.OrderDate,
				"total_amount":  po.TotalAmount,
				"status":        po.Status,
				"remark":        po.Remark,
				"version":       po.Version,
				"updated_at":    po.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveItems(tx, po)
	})
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveItems replaces the stored item set with the aggregate's current items
func (r *GormPurchaseOrderRepository) saveItems(tx *gorm.DB, po *order.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(po.Items))
	for i, item := range po.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", po.ID, currentItemIDs).
			Delete(&order.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", po.ID).
			Delete(&order.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range po.Items {
		po.Items[i].OrderID = po.ID
		if err := tx.Save(&po.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
