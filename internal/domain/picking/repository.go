package picking

import (
	"context"

	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

// PickingTaskRepository defines the interface for picking task persistence
type PickingTaskRepository interface {
	// FindByID finds a task by its ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*PickingTask, error)

	// FindByCode finds a task by its code, items included
	FindByCode(ctx context.Context, code string) (*PickingTask, error)

	// FindByItemID finds the task owning the given item
	FindByItemID(ctx context.Context, itemID uuid.UUID) (*PickingTask, error)

	// FindAll finds tasks matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PickingTask, error)

	// FindByStatus finds tasks in the given status
	FindByStatus(ctx context.Context, status PickingTaskStatus, filter shared.Filter) ([]PickingTask, error)

	// Save creates or updates a task with its items
	Save(ctx context.Context, task *PickingTask) error

	// SaveWithLock updates a task with optimistic concurrency control
	SaveWithLock(ctx context.Context, task *PickingTask) error

	// Count counts tasks matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
