package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/picking"
	"github.com/mims/backend/internal/domain/shared"
)

// GormPickingTaskRepository implements PickingTaskRepository using GORM
type GormPickingTaskRepository struct {
	db *gorm.DB
}

// NewGormPickingTaskRepository creates a new GormPickingTaskRepository
func NewGormPickingTaskRepository(db *gorm.DB) *GormPickingTaskRepository {
	return &GormPickingTaskRepository{db: db}
}

// FindByID finds a task by its ID, items included
func (r *GormPickingTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*picking.PickingTask, error) {
	var task picking.PickingTask
	if err := r.db.WithContext(ctx).Preload("Items").First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindByCode finds a task by its code, items included
func (r *GormPickingTaskRepository) FindByCode(ctx context.Context, code string) (*picking.PickingTask, error) {
	var task picking.PickingTask
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindByItemID finds the task owning the given item
func (r *GormPickingTaskRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*picking.PickingTask, error) {
	var item picking.PickingItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, item.TaskID)
}

// FindAll finds tasks matching the filter
func (r *GormPickingTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]picking.PickingTask, error) {
	var tasks []picking.PickingTask
	query := r.db.WithContext(ctx).Model(&picking.PickingTask{}).Preload("Items")
	if err := applyFilter(query, filter, PickingTaskSortFields).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByStatus finds tasks in the given status
func (r *GormPickingTaskRepository) FindByStatus(ctx context.Context, status picking.PickingTaskStatus, filter shared.Filter) ([]picking.PickingTask, error) {
	var tasks []picking.PickingTask
	query := r.db.WithContext(ctx).Model(&picking.PickingTask{}).Preload("Items").
		Where("status = ?", status)
	if err := applyFilter(query, filter, PickingTaskSortFields).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save creates or updates a task with its items
func (r *GormPickingTaskRepository) Save(ctx context.Context, task *picking.PickingTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(task).Error; err != nil {
			return err
		}
		return r.saveItems(tx, task)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormPickingTaskRepository) SaveWithLock(ctx context.Context, task *picking.PickingTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(task).
			Where("id = ? AND version = ?", task.ID, task.Version-1).
			Updates(map[string]interface{}{
				"code":           task.Code,
				"sales_order_id": task.SalesOrderID,
				"reference":      task.Reference,
				"total_items":    task.TotalItems,
				"picked_items":   task.PickedItems,
				"status":         task.Status,
				"assigned_to":    task.AssignedTo,
				"completed_at":   task.CompletedAt,
				"version":        task.Version,
				"updated_at":     task.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.saveItems(tx, task)
	})
}

// Count counts tasks matching the filter
func (r *GormPickingTaskRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&picking.PickingTask{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveItems replaces the stored item set with the aggregate's current items
func (r *GormPickingTaskRepository) saveItems(tx *gorm.DB, task *picking.PickingTask) error {
	currentItemIDs := make([]uuid.UUID, len(task.Items))
	for i, item := range task.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("task_id = ? AND id NOT IN ?", task.ID, currentItemIDs).
			Delete(&picking.PickingItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("task_id = ?", task.ID).
			Delete(&picking.PickingItem{}).Error; err != nil {
			return err
		}
	}

	for i := range task.Items {
		task.Items[i].TaskID = task.ID
		if err := tx.Save(&task.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
