package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusConfirmed       PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusPartialReceived PurchaseOrderStatus = "PARTIAL_RECEIVED"
	PurchaseOrderStatusCompleted       PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusConfirmed, PurchaseOrderStatusPartialReceived,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusPartialReceived || target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartialReceived:
		return target == PurchaseOrderStatusPartialReceived || target == PurchaseOrderStatusCompleted
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusConfirmed || s == PurchaseOrderStatusPartialReceived
}

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID           uuid.UUID       `gorm:"type:uuid;not null"`
	PartCode         string          `gorm:"type:varchar(50);not null"`
	PartName         string          `gorm:"type:varchar(200);not null"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	OrderedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"` // OrderedQuantity * UnitCost
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, partID uuid.UUID, partCode, partName, unit string, quantity, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if partID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		PartID:           partID,
		PartCode:         partCode,
		PartName:         partName,
		Unit:             unit,
		OrderedQuantity:  quantity,
		ReceivedQuantity: decimal.Zero,
		UnitCost:         unitCost,
		Amount:           quantity.Mul(unitCost),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// RemainingQuantity returns the quantity still to be received
func (i *PurchaseOrderItem) RemainingQuantity() decimal.Decimal {
	return i.OrderedQuantity.Sub(i.ReceivedQuantity)
}

// Receive records a received quantity against this line
func (i *PurchaseOrderItem) Receive(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}

	newReceived := i.ReceivedQuantity.Add(quantity)
	if newReceived.GreaterThan(i.OrderedQuantity) {
		return shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %s, only %s remaining", quantity.String(), i.RemainingQuantity().String()))
	}

	i.ReceivedQuantity = newReceived
	i.UpdatedAt = time.Now()

	return nil
}

// PurchaseOrder represents a purchase order aggregate root.
// Bulk imports create orders through the same methods, merging lines for
// the same part instead of appending duplicates.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Code         string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_code"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName string              `gorm:"type:varchar(200);not null"`
	OrderDate    time.Time           `gorm:"not null;index"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Remark       string              `gorm:"type:text"`
	ConfirmedAt  *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order
func NewPurchaseOrder(code string, supplierID uuid.UUID, supplierName string, orderDate time.Time) (*PurchaseOrder, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		OrderDate:         orderDate,
		Items:             make([]PurchaseOrderItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            PurchaseOrderStatusDraft,
	}

	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))

	return po, nil
}

// AddItem adds a new line item. Only allowed in DRAFT status.
func (o *PurchaseOrder) AddItem(partID uuid.UUID, partCode, partName, unit string, quantity, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	for _, item := range o.Items {
		if item.PartID == partID {
			return nil, shared.NewDomainError("DUPLICATE_PART", "Part already exists in order, merge quantity instead")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, partID, partCode, partName, unit, quantity, unitCost)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return item, nil
}

// MergeItem adds quantity to an existing line for the part, or creates a
// new line when none exists. Imports rely on this for repeated rows that
// reference the same order and part.
func (o *PurchaseOrder) MergeItem(partID uuid.UUID, partCode, partName, unit string, quantity, unitCost decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify items of a non-draft order")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for idx := range o.Items {
		if o.Items[idx].PartID == partID {
			o.Items[idx].OrderedQuantity = o.Items[idx].OrderedQuantity.Add(quantity)
			o.Items[idx].UnitCost = unitCost
			o.Items[idx].Amount = o.Items[idx].OrderedQuantity.Mul(unitCost)
			o.Items[idx].UpdatedAt = time.Now()
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}

	_, err := o.AddItem(partID, partCode, partName, unit, quantity, unitCost)
	return err
}

// RemoveItem removes a line item. Only allowed in DRAFT status.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// Confirm moves the order from DRAFT to CONFIRMED
func (o *PurchaseOrder) Confirm() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm order in status %s", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm an order with no items")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o))

	return nil
}

// ReceiveItems records received quantities against order lines and moves the
// order to PARTIAL_RECEIVED or COMPLETED depending on what remains open.
func (o *PurchaseOrder) ReceiveItems(quantities map[uuid.UUID]decimal.Decimal) error {
	if !o.Status.CanReceive() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot receive goods for order in status %s", o.Status))
	}

	for partID, qty := range quantities {
		found := false
		for idx := range o.Items {
			if o.Items[idx].PartID == partID {
				if err := o.Items[idx].Receive(qty); err != nil {
					return err
				}
				found = true
				break
			}
		}
		if !found {
			return shared.NewDomainError("ITEM_NOT_FOUND",
				fmt.Sprintf("Part %s is not on this order", partID))
		}
	}

	now := time.Now()
	if o.fullyReceived() {
		o.Status = PurchaseOrderStatusCompleted
		o.CompletedAt = &now
		o.AddDomainEvent(NewPurchaseOrderCompletedEvent(o))
	} else {
		o.Status = PurchaseOrderStatusPartialReceived
	}
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// Cancel cancels the order
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel order in status %s", o.Status))
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.Remark = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// ItemForPart returns the line item for the given part, or nil
func (o *PurchaseOrder) ItemForPart(partID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].PartID == partID {
			return &o.Items[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) fullyReceived() bool {
	for _, item := range o.Items {
		if item.RemainingQuantity().GreaterThan(decimal.Zero) {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}
