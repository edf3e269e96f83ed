package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mims/backend/internal/domain/audit"
)

// CreateAuditRequest opens a new audit campaign
type CreateAuditRequest struct {
	Scope     string      `json:"scope" binding:"required,oneof=ALL PARTIAL"`
	AuditType string      `json:"audit_type"`
	AuditDate *time.Time  `json:"audit_date"`
	Performer string      `json:"performer"`
	PartIDs   []uuid.UUID `json:"part_ids"`
}

// RecordCountRequest enters the physical count for one audit item
type RecordCountRequest struct {
	CountedQty decimal.Decimal `json:"counted_qty"`
	Notes      string          `json:"notes"`
}

// ApproveRequest signs off a completed audit
type ApproveRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required"`
}

// ItemResponse represents an audit item in API responses
type ItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	PartID      uuid.UUID        `json:"part_id"`
	PartCode    string           `json:"part_code"`
	PartName    string           `json:"part_name"`
	SystemQty   decimal.Decimal  `json:"system_qty"`
	CountedQty  *decimal.Decimal `json:"counted_qty,omitempty"`
	Discrepancy *decimal.Decimal `json:"discrepancy,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	CountedAt   *time.Time       `json:"counted_at,omitempty"`
}

// AuditResponse represents an audit campaign in API responses
type AuditResponse struct {
	ID               uuid.UUID      `json:"id"`
	Code             string         `json:"code"`
	Scope            string         `json:"scope"`
	AuditType        string         `json:"audit_type,omitempty"`
	AuditDate        time.Time      `json:"audit_date"`
	Performer        string         `json:"performer,omitempty"`
	TotalItems       int            `json:"total_items"`
	CountedItems     int            `json:"counted_items"`
	MatchedItems     int            `json:"matched_items"`
	DiscrepancyItems int            `json:"discrepancy_items"`
	Status           string         `json:"status"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	ApprovedAt       *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy       string         `json:"approved_by,omitempty"`
	Items            []ItemResponse `json:"items,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// AuditListFilter filters audit listings
type AuditListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToItemResponse converts an audit item to its API representation
func ToItemResponse(item *audit.AuditItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		PartID:      item.PartID,
		PartCode:    item.PartCode,
		PartName:    item.PartName,
		SystemQty:   item.SystemQty,
		CountedQty:  item.CountedQty,
		Discrepancy: item.Discrepancy,
		Notes:       item.Notes,
		CountedAt:   item.CountedAt,
	}
}

// ToAuditResponse converts an audit record to its API representation
func ToAuditResponse(record *audit.AuditRecord, withItems bool) *AuditResponse {
	resp := &AuditResponse{
		ID:               record.ID,
		Code:             record.Code,
		Scope:            string(record.Scope),
		AuditType:        record.AuditType,
		AuditDate:        record.AuditDate,
		Performer:        record.Performer,
		TotalItems:       record.TotalItems,
		CountedItems:     record.CountedItems(),
		MatchedItems:     record.MatchedItems,
		DiscrepancyItems: record.DiscrepancyItems,
		Status:           record.Status.String(),
		CompletedAt:      record.CompletedAt,
		ApprovedAt:       record.ApprovedAt,
		ApprovedBy:       record.ApprovedBy,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if withItems {
		resp.Items = make([]ItemResponse, 0, len(record.Items))
		for idx := range record.Items {
			resp.Items = append(resp.Items, ToItemResponse(&record.Items[idx]))
		}
	}
	return resp
}
