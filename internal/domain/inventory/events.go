package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInventoryState = "InventoryState"
)

// Event type constants
const (
	EventTypeStockChanged     = "StockChanged"
	EventTypeStockBelowSafety = "StockBelowSafety"
)

// StockChangedEvent is published whenever on-hand quantity changes
type StockChangedEvent struct {
	shared.BaseDomainEvent
	PartID    uuid.UUID       `json:"part_id"`
	Type      TransactionType `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	BeforeQty decimal.Decimal `json:"before_qty"`
	AfterQty  decimal.Decimal `json:"after_qty"`
}

// NewStockChangedEvent creates a new StockChangedEvent
func NewStockChangedEvent(state *InventoryState, txType TransactionType, quantity, before, after decimal.Decimal) *StockChangedEvent {
	return &StockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockChanged, AggregateTypeInventoryState, state.ID),
		PartID:          state.PartID,
		Type:            txType,
		Quantity:        quantity,
		BeforeQty:       before,
		AfterQty:        after,
	}
}

// StockBelowSafetyEvent is published when a movement leaves on-hand stock
// under the part's safety threshold
type StockBelowSafetyEvent struct {
	shared.BaseDomainEvent
	PartID      uuid.UUID       `json:"part_id"`
	PartCode    string          `json:"part_code"`
	CurrentQty  decimal.Decimal `json:"current_qty"`
	SafetyStock decimal.Decimal `json:"safety_stock"`
}

// NewStockBelowSafetyEvent creates a new StockBelowSafetyEvent
func NewStockBelowSafetyEvent(state *InventoryState, partCode string, safetyStock decimal.Decimal) *StockBelowSafetyEvent {
	return &StockBelowSafetyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowSafety, AggregateTypeInventoryState, state.ID),
		PartID:          state.PartID,
		PartCode:        partCode,
		CurrentQty:      state.CurrentQty,
		SafetyStock:     safetyStock,
	}
}
