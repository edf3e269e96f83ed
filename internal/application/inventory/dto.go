package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/inventory"
)

// ApplyRequest represents one ledger application
type ApplyRequest struct {
	PartID          uuid.UUID       `json:"part_id" binding:"required"`
	Type            string          `json:"type" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	Reason          string          `json:"reason"`
	PerformedBy     string          `json:"performed_by"`
	TransactionDate *time.Time      `json:"transaction_date"`
}

// TransferRequest moves quantity between two locations of the same part.
// Only the outbound side is counted stock; the inbound side is recorded
// for traceability.
type TransferRequest struct {
	PartID      uuid.UUID       `json:"part_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Reason      string          `json:"reason"`
	PerformedBy string          `json:"performed_by"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	PartID          uuid.UUID       `json:"part_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	BeforeQty       decimal.Decimal `json:"before_qty"`
	AfterQty        decimal.Decimal `json:"after_qty"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	PerformedBy     string          `json:"performed_by,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToTransactionResponse maps a domain transaction to its response form
func ToTransactionResponse(tx *inventory.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              tx.ID,
		Code:            tx.Code,
		PartID:          tx.PartID,
		Type:            tx.Type.String(),
		Quantity:        tx.Quantity,
		BeforeQty:       tx.BeforeQty,
		AfterQty:        tx.AfterQty,
		ReferenceType:   tx.Reference.Type.String(),
		ReferenceID:     tx.Reference.ID,
		Reason:          tx.Reason,
		PerformedBy:     tx.PerformedBy,
		TransactionDate: tx.TransactionDate,
		CreatedAt:       tx.CreatedAt,
	}
}

// StateResponse represents the current stock position of a part
type StateResponse struct {
	ID           uuid.UUID       `json:"id"`
	PartID       uuid.UUID       `json:"part_id"`
	CurrentQty   decimal.Decimal `json:"current_qty"`
	ReservedQty  decimal.Decimal `json:"reserved_qty"`
	IncomingQty  decimal.Decimal `json:"incoming_qty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToStateResponse maps a domain state to its response form
func ToStateResponse(state *inventory.InventoryState) *StateResponse {
	return &StateResponse{
		ID:           state.ID,
		PartID:       state.PartID,
		CurrentQty:   state.CurrentQty,
		ReservedQty:  state.ReservedQty,
		IncomingQty:  state.IncomingQty,
		AvailableQty: state.AvailableQuantity(),
		UpdatedAt:    state.UpdatedAt,
		Version:      state.Version,
	}
}

// TransactionListFilter represents filter options for the ledger list
type TransactionListFilter struct {
	PartID        *uuid.UUID `form:"part_id"`
	Type          string     `form:"type"`
	ReferenceType string     `form:"reference_type"`
	ReferenceID   string     `form:"reference_id"`
	DateFrom      *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StateListFilter represents filter options for state listing
type StateListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
