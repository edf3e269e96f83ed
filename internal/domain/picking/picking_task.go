package picking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// PickingTaskStatus represents the status of a picking task
type PickingTaskStatus string

const (
	PickingTaskStatusPending    PickingTaskStatus = "PENDING"
	PickingTaskStatusInProgress PickingTaskStatus = "IN_PROGRESS"
	PickingTaskStatusCompleted  PickingTaskStatus = "COMPLETED"
)

// IsValid checks if the status is a valid PickingTaskStatus
func (s PickingTaskStatus) IsValid() bool {
	switch s {
	case PickingTaskStatusPending, PickingTaskStatusInProgress, PickingTaskStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of PickingTaskStatus
func (s PickingTaskStatus) String() string {
	return string(s)
}

// PickingItemStatus represents the status of a single picking item
type PickingItemStatus string

const (
	PickingItemStatusPending    PickingItemStatus = "PENDING"
	PickingItemStatusInProgress PickingItemStatus = "IN_PROGRESS"
	PickingItemStatusPicked     PickingItemStatus = "PICKED"
	PickingItemStatusSkipped    PickingItemStatus = "SKIPPED"
)

// IsValid checks if the status is a valid PickingItemStatus
func (s PickingItemStatus) IsValid() bool {
	switch s {
	case PickingItemStatusPending, PickingItemStatusInProgress,
		PickingItemStatusPicked, PickingItemStatusSkipped:
		return true
	}
	return false
}

// String returns the string representation of PickingItemStatus
func (s PickingItemStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the item can no longer change
func (s PickingItemStatus) IsTerminal() bool {
	return s == PickingItemStatusPicked || s == PickingItemStatusSkipped
}

// CanTransitionTo checks if the item status can transition to the target status
func (s PickingItemStatus) CanTransitionTo(target PickingItemStatus) bool {
	switch s {
	case PickingItemStatusPending:
		// skip and flag are allowed without scanning first
		return target == PickingItemStatusInProgress || target == PickingItemStatusSkipped
	case PickingItemStatusInProgress:
		return target == PickingItemStatusPicked || target == PickingItemStatusSkipped
	case PickingItemStatusPicked, PickingItemStatusSkipped:
		return false // Terminal states
	}
	return false
}

// PickingItem represents one part line within a picking task
type PickingItem struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	TaskID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	PartID        uuid.UUID         `gorm:"type:uuid;not null"`
	PartCode      string            `gorm:"type:varchar(50);not null"`
	PartName      string            `gorm:"type:varchar(200);not null"`
	RequiredQty   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	PickedQty     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Status        PickingItemStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	SkipReason    string            `gorm:"type:varchar(255)"` // Structured reason for skip/flag
	LedgerApplied bool              `gorm:"not null;default:false"` // Set once this item's outbound ledger entry exists
	PickedAt      *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PickingItem) TableName() string {
	return "picking_items"
}

// NewPickingItem creates a new picking item line
func NewPickingItem(taskID, partID uuid.UUID, partCode, partName string, requiredQty decimal.Decimal) (*PickingItem, error) {
	if partID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}
	if requiredQty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Required quantity must be positive")
	}

	now := time.Now()
	return &PickingItem{
		ID:          uuid.New(),
		TaskID:      taskID,
		PartID:      partID,
		PartCode:    partCode,
		PartName:    partName,
		RequiredQty: requiredQty,
		PickedQty:   decimal.Zero,
		Status:      PickingItemStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PickingTask represents a group of items to pick for one sales order.
// It is the aggregate root; items are only mutated through it so the
// picked-items counter stays consistent.
type PickingTask struct {
	shared.BaseAggregateRoot
	Code         string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_picking_task_code"`
	SalesOrderID *uuid.UUID        `gorm:"type:uuid;index"`
	Reference    string            `gorm:"type:varchar(100)"` // External order reference
	Items        []PickingItem     `gorm:"foreignKey:TaskID;references:ID"`
	TotalItems   int               `gorm:"not null;default:0"`
	PickedItems  int               `gorm:"not null;default:0"` // Count of items in a terminal state
	Status       PickingTaskStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	AssignedTo   string            `gorm:"type:varchar(100)"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (PickingTask) TableName() string {
	return "picking_tasks"
}

// NewPickingTask creates a new picking task
func NewPickingTask(code string, salesOrderID *uuid.UUID, reference string) (*PickingTask, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Task code cannot be empty")
	}

	task := &PickingTask{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		SalesOrderID:      salesOrderID,
		Reference:         reference,
		Items:             make([]PickingItem, 0),
		Status:            PickingTaskStatusPending,
	}

	task.AddDomainEvent(NewPickingTaskCreatedEvent(task))

	return task, nil
}

// AddItem adds a part line to the task. Only allowed before completion.
func (t *PickingTask) AddItem(partID uuid.UUID, partCode, partName string, requiredQty decimal.Decimal) (*PickingItem, error) {
	if t.Status == PickingTaskStatusCompleted {
		return nil, shared.ErrAlreadyCompleted
	}

	item, err := NewPickingItem(t.ID, partID, partCode, partName, requiredQty)
	if err != nil {
		return nil, err
	}

	t.Items = append(t.Items, *item)
	t.recountItems()
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return item, nil
}

// Scan moves an item to IN_PROGRESS, marking that the picker has located it
func (t *PickingTask) Scan(itemID uuid.UUID) error {
	return t.transitionItem(itemID, PickingItemStatusInProgress, func(item *PickingItem) error {
		return nil
	})
}

// Pick finishes an item with the quantity actually taken from stock.
// Picking less than required is allowed; picking more is not.
func (t *PickingTask) Pick(itemID uuid.UUID, pickedQty decimal.Decimal) error {
	if pickedQty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Picked quantity must be positive")
	}

	return t.transitionItem(itemID, PickingItemStatusPicked, func(item *PickingItem) error {
		if pickedQty.GreaterThan(item.RequiredQty) {
			return shared.NewDomainError("QUANTITY_EXCEEDED",
				fmt.Sprintf("Cannot pick %s, only %s required", pickedQty.String(), item.RequiredQty.String()))
		}
		item.PickedQty = pickedQty
		now := time.Now()
		item.PickedAt = &now
		return nil
	})
}

// Skip ends an item as SKIPPED without taking stock
func (t *PickingTask) Skip(itemID uuid.UUID, reason string) error {
	return t.transitionItem(itemID, PickingItemStatusSkipped, func(item *PickingItem) error {
		item.SkipReason = reason
		return nil
	})
}

// Flag ends an item as SKIPPED with a structured problem reason, used when
// the picker finds the bin empty or the part damaged
func (t *PickingTask) Flag(itemID uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Flag reason cannot be empty")
	}
	return t.Skip(itemID, reason)
}

// Complete marks the task terminal. It fails when already completed so
// that the caller's outbound ledger side effect can never run twice.
func (t *PickingTask) Complete() error {
	if t.Status == PickingTaskStatusCompleted {
		return shared.ErrAlreadyCompleted
	}

	now := time.Now()
	t.Status = PickingTaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewPickingTaskCompletedEvent(t))

	return nil
}

// IsCompleted returns true once the task is terminal
func (t *PickingTask) IsCompleted() bool {
	return t.Status == PickingTaskStatusCompleted
}

// ItemByID returns the item with the given ID, or nil
func (t *PickingTask) ItemByID(itemID uuid.UUID) *PickingItem {
	for idx := range t.Items {
		if t.Items[idx].ID == itemID {
			return &t.Items[idx]
		}
	}
	return nil
}

// PendingLedgerItems returns PICKED items with quantity that have not yet
// produced their outbound ledger entry. Completion drains this list.
func (t *PickingTask) PendingLedgerItems() []*PickingItem {
	items := make([]*PickingItem, 0)
	for idx := range t.Items {
		item := &t.Items[idx]
		if item.Status == PickingItemStatusPicked && item.PickedQty.IsPositive() && !item.LedgerApplied {
			items = append(items, item)
		}
	}
	return items
}

// MarkLedgerApplied records that an item's outbound ledger entry exists
func (t *PickingTask) MarkLedgerApplied(itemID uuid.UUID) error {
	item := t.ItemByID(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Picking item not found")
	}
	item.LedgerApplied = true
	item.UpdatedAt = time.Now()
	return nil
}

// CountByStatus returns how many items are in the given status
func (t *PickingTask) CountByStatus(status PickingItemStatus) int {
	count := 0
	for _, item := range t.Items {
		if item.Status == status {
			count++
		}
	}
	return count
}

// transitionItem applies a guarded status transition plus a mutation to one
// item, then recomputes the task counters from the full item set.
func (t *PickingTask) transitionItem(itemID uuid.UUID, target PickingItemStatus, mutate func(*PickingItem) error) error {
	if t.Status == PickingTaskStatusCompleted {
		return shared.ErrAlreadyCompleted
	}

	item := t.ItemByID(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Picking item not found")
	}
	if !item.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move item from %s to %s", item.Status, target))
	}

	if err := mutate(item); err != nil {
		return err
	}

	item.Status = target
	item.UpdatedAt = time.Now()

	if t.Status == PickingTaskStatusPending {
		t.Status = PickingTaskStatusInProgress
	}
	t.recountItems()
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// recountItems recomputes counters from the item set rather than keeping
// incremental deltas
func (t *PickingTask) recountItems() {
	t.TotalItems = len(t.Items)
	picked := 0
	for _, item := range t.Items {
		if item.Status.IsTerminal() {
			picked++
		}
	}
	t.PickedItems = picked
}
