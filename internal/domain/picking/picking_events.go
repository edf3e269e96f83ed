package picking

import (
	"github.com/google/uuid"

	"github.com/mims/backend/internal/domain/shared"
)

const AggregateTypePickingTask = "PickingTask"

const (
	EventTypePickingTaskCreated   = "PickingTaskCreated"
	EventTypePickingTaskCompleted = "PickingTaskCompleted"
)

// PickingTaskCreatedEvent is published when a new picking task is created
type PickingTaskCreatedEvent struct {
	shared.BaseDomainEvent
	TaskID    uuid.UUID `json:"task_id"`
	Code      string    `json:"code"`
	Reference string    `json:"reference,omitempty"`
}

// NewPickingTaskCreatedEvent creates a new PickingTaskCreatedEvent
func NewPickingTaskCreatedEvent(task *PickingTask) *PickingTaskCreatedEvent {
	return &PickingTaskCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickingTaskCreated, AggregateTypePickingTask, task.ID),
		TaskID:          task.ID,
		Code:            task.Code,
		Reference:       task.Reference,
	}
}

// PickingTaskCompletedEvent is published exactly once, when a task turns terminal
type PickingTaskCompletedEvent struct {
	shared.BaseDomainEvent
	TaskID       uuid.UUID `json:"task_id"`
	Code         string    `json:"code"`
	PickedItems  int       `json:"picked_items"`
	SkippedItems int       `json:"skipped_items"`
}

// NewPickingTaskCompletedEvent creates a new PickingTaskCompletedEvent
func NewPickingTaskCompletedEvent(task *PickingTask) *PickingTaskCompletedEvent {
	return &PickingTaskCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePickingTaskCompleted, AggregateTypePickingTask, task.ID),
		TaskID:          task.ID,
		Code:            task.Code,
		PickedItems:     task.CountByStatus(PickingItemStatusPicked),
		SkippedItems:    task.CountByStatus(PickingItemStatusSkipped),
	}
}
