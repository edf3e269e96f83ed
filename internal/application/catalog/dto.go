package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/catalog"
)

// CreatePartRequest creates a part master record
type CreatePartRequest struct {
	Code          string           `json:"code" binding:"required"`
	Name          string           `json:"name" binding:"required"`
	Specification string           `json:"specification"`
	Unit          string           `json:"unit" binding:"required"`
	Category      string           `json:"category"`
	SafetyStock   *decimal.Decimal `json:"safety_stock"`
	MinOrderQty   *decimal.Decimal `json:"min_order_qty"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

// UpdatePartRequest updates a part master record
type UpdatePartRequest struct {
	Name          string           `json:"name" binding:"required"`
	Specification string           `json:"specification"`
	Unit          string           `json:"unit"`
	Category      string           `json:"category"`
	SafetyStock   *decimal.Decimal `json:"safety_stock"`
	MinOrderQty   *decimal.Decimal `json:"min_order_qty"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

// PartResponse represents a part in API responses
type PartResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Specification string          `json:"specification,omitempty"`
	Unit          string          `json:"unit"`
	Category      string          `json:"category,omitempty"`
	SafetyStock   decimal.Decimal `json:"safety_stock"`
	MinOrderQty   decimal.Decimal `json:"min_order_qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PartListFilter filters part listings
type PartListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// ToPartResponse converts a part to its API representation
func ToPartResponse(part *catalog.Part) *PartResponse {
	return &PartResponse{
		ID:            part.ID,
		Code:          part.Code,
		Name:          part.Name,
		Specification: part.Specification,
		Unit:          part.Unit,
		Category:      part.Category,
		SafetyStock:   part.SafetyStock,
		MinOrderQty:   part.MinOrderQty,
		UnitPrice:     part.UnitPrice,
		Status:        string(part.Status),
		CreatedAt:     part.CreatedAt,
		UpdatedAt:     part.UpdatedAt,
	}
}
