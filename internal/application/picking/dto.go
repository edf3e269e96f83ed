package picking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/picking"
)

// CreateTaskRequest creates a picking task with its item lines
type CreateTaskRequest struct {
	SalesOrderID *uuid.UUID              `json:"sales_order_id"`
	Reference    string                  `json:"reference"`
	AssignedTo   string                  `json:"assigned_to"`
	Items        []CreateTaskItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateTaskItemRequest is one part line on a new task
type CreateTaskItemRequest struct {
	PartID      uuid.UUID       `json:"part_id" binding:"required"`
	RequiredQty decimal.Decimal `json:"required_qty" binding:"required"`
}

// ItemActionRequest applies a picker action to one item
type ItemActionRequest struct {
	Action    string           `json:"action" binding:"required,oneof=pick scan skip flag"`
	PickedQty *decimal.Decimal `json:"picked_qty"`
	Reason    string           `json:"reason"`
}

// ItemResponse represents a picking item in API responses
type ItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	PartID        uuid.UUID       `json:"part_id"`
	PartCode      string          `json:"part_code"`
	PartName      string          `json:"part_name"`
	RequiredQty   decimal.Decimal `json:"required_qty"`
	PickedQty     decimal.Decimal `json:"picked_qty"`
	Status        string          `json:"status"`
	SkipReason    string          `json:"skip_reason,omitempty"`
	LedgerApplied bool            `json:"ledger_applied"`
	PickedAt      *time.Time      `json:"picked_at,omitempty"`
}

// TaskResponse represents a picking task in API responses
type TaskResponse struct {
	ID           uuid.UUID      `json:"id"`
	Code         string         `json:"code"`
	SalesOrderID *uuid.UUID     `json:"sales_order_id,omitempty"`
	Reference    string         `json:"reference,omitempty"`
	Status       string         `json:"status"`
	TotalItems   int            `json:"total_items"`
	PickedItems  int            `json:"picked_items"`
	AssignedTo   string         `json:"assigned_to,omitempty"`
	Items        []ItemResponse `json:"items,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CompletionResult reports the outcome of completing a task
type CompletionResult struct {
	TaskID       uuid.UUID `json:"task_id"`
	Code         string    `json:"code"`
	PickedItems  int       `json:"picked_items"`
	SkippedItems int       `json:"skipped_items"`
	LedgerCodes  []string  `json:"ledger_codes"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ToItemResponse maps a domain item to its response form
func ToItemResponse(item *picking.PickingItem) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		PartID:        item.PartID,
		PartCode:      item.PartCode,
		PartName:      item.PartName,
		RequiredQty:   item.RequiredQty,
		PickedQty:     item.PickedQty,
		Status:        item.Status.String(),
		SkipReason:    item.SkipReason,
		LedgerApplied: item.LedgerApplied,
		PickedAt:      item.PickedAt,
	}
}

// ToTaskResponse maps a domain task to its response form
func ToTaskResponse(task *picking.PickingTask, withItems bool) *TaskResponse {
	resp := &TaskResponse{
		ID:           task.ID,
		Code:         task.Code,
		SalesOrderID: task.SalesOrderID,
		Reference:    task.Reference,
		Status:       task.Status.String(),
		TotalItems:   task.TotalItems,
		PickedItems:  task.PickedItems,
		AssignedTo:   task.AssignedTo,
		CompletedAt:  task.CompletedAt,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if withItems {
		resp.Items = make([]ItemResponse, 0, len(task.Items))
		for idx := range task.Items {
			resp.Items = append(resp.Items, ToItemResponse(&task.Items[idx]))
		}
	}
	return resp
}

// TaskListFilter represents filter options for task listing
type TaskListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
