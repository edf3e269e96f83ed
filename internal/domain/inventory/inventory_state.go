package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// InventoryState represents the current stock position for a single part.
// It is the aggregate root for stock mutations; there is exactly one row
// per part. All changes go through the Apply* methods so that every
// mutation is paired with a ledger transaction carrying the before and
// after quantities.
type InventoryState struct {
	shared.BaseAggregateRoot
	PartID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_state_part"`
	CurrentQty  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On-hand quantity
	ReservedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Committed to open picking tasks
	IncomingQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On order, not yet received
}

// TableName returns the table name for GORM
func (InventoryState) TableName() string {
	return "inventory_states"
}

// NewInventoryState creates a zero-quantity state for a part
func NewInventoryState(partID uuid.UUID) (*InventoryState, error) {
	if partID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PART", "Part ID cannot be empty")
	}

	return &InventoryState{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartID:            partID,
		CurrentQty:        decimal.Zero,
		ReservedQty:       decimal.Zero,
		IncomingQty:       decimal.Zero,
	}, nil
}

// AvailableQuantity returns the quantity free for new commitments.
// It is derived, never stored.
func (s *InventoryState) AvailableQuantity() decimal.Decimal {
	return s.CurrentQty.Sub(s.ReservedQty)
}

// ApplyInbound increases on-hand stock and returns the before quantity
func (s *InventoryState) ApplyInbound(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	before := s.CurrentQty
	s.CurrentQty = s.CurrentQty.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockChangedEvent(s, TransactionTypeInbound, quantity, before, s.CurrentQty))

	return before, nil
}

// ApplyOutbound decreases on-hand stock and returns the before quantity.
// Fails with INSUFFICIENT_STOCK when on-hand would drop below zero,
// regardless of what the movement is for.
func (s *InventoryState) ApplyOutbound(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.CurrentQty.LessThan(quantity) {
		return decimal.Zero, shared.ErrInsufficientStock
	}

	before := s.CurrentQty
	s.CurrentQty = s.CurrentQty.Sub(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockChangedEvent(s, TransactionTypeOutbound, quantity, before, s.CurrentQty))

	return before, nil
}

// ApplyAdjustment sets on-hand stock to an absolute quantity and returns
// the before quantity. The posted quantity is the new on-hand figure, not
// a delta.
func (s *InventoryState) ApplyAdjustment(newQuantity decimal.Decimal) (decimal.Decimal, error) {
	if newQuantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot be negative")
	}

	before := s.CurrentQty
	s.CurrentQty = newQuantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockChangedEvent(s, TransactionTypeAdjustment, newQuantity, before, s.CurrentQty))

	return before, nil
}

// Reserve commits available stock to an open picking task
func (s *InventoryState) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.AvailableQuantity().LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	s.ReservedQty = s.ReservedQty.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Release returns reserved stock to the available pool. Releasing more
// than is reserved clamps to zero rather than going negative.
func (s *InventoryState) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.ReservedQty = s.ReservedQty.Sub(quantity)
	if s.ReservedQty.IsNegative() {
		s.ReservedQty = decimal.Zero
	}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// AddIncoming records quantity expected from a confirmed purchase order
func (s *InventoryState) AddIncoming(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.IncomingQty = s.IncomingQty.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// ReduceIncoming clears expected quantity once goods are received
func (s *InventoryState) ReduceIncoming(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.IncomingQty = s.IncomingQty.Sub(quantity)
	if s.IncomingQty.IsNegative() {
		s.IncomingQty = decimal.Zero
	}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// CanFulfill returns true if the available quantity covers the request
func (s *InventoryState) CanFulfill(quantity decimal.Decimal) bool {
	return s.AvailableQuantity().GreaterThanOrEqual(quantity)
}

// IsBelowSafetyStock compares on-hand against a part's safety stock level
func (s *InventoryState) IsBelowSafetyStock(safetyStock decimal.Decimal) bool {
	return safetyStock.IsPositive() && s.CurrentQty.LessThan(safetyStock)
}
