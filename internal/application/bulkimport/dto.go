package bulkimport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRow is one externally supplied ledger movement
type TransactionRow struct {
	PartCode        string           `json:"part_code"`
	Type            string           `json:"type"`
	Quantity        *decimal.Decimal `json:"quantity"`
	TransactionDate string           `json:"transaction_date"`
	Reason          string           `json:"reason"`
	PerformedBy     string           `json:"performed_by"`
}

// OrderRow is one externally supplied purchase order line. Rows sharing
// an order code merge into the same order.
type OrderRow struct {
	OrderCode    string           `json:"order_code"`
	SupplierName string           `json:"supplier_name"`
	PartCode     string           `json:"part_code"`
	Quantity     *decimal.Decimal `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	OrderDate    string           `json:"order_date"`
}

// ProductRow is one externally supplied part master record
type ProductRow struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Specification string           `json:"specification"`
	Unit          string           `json:"unit"`
	Category      string           `json:"category"`
	SafetyStock   *decimal.Decimal `json:"safety_stock"`
	MinOrderQty   *decimal.Decimal `json:"min_order_qty"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

// TransactionImportRequest is the body of a transactions bulk upload
type TransactionImportRequest struct {
	FileName   string           `json:"file_name"`
	UploadedBy string           `json:"uploaded_by"`
	Data       []TransactionRow `json:"data" binding:"required"`
}

// OrderImportRequest is the body of an orders bulk upload
type OrderImportRequest struct {
	FileName   string     `json:"file_name"`
	UploadedBy string     `json:"uploaded_by"`
	Data       []OrderRow `json:"data" binding:"required"`
}

// ProductImportRequest is the body of a products bulk upload
type ProductImportRequest struct {
	FileName   string       `json:"file_name"`
	UploadedBy string       `json:"uploaded_by"`
	Data       []ProductRow `json:"data" binding:"required"`
}

// ImportResult is the aggregated outcome of one batch
type ImportResult struct {
	UploadID     uuid.UUID `json:"upload_id"`
	Success      int       `json:"success"`
	Failed       int       `json:"failed"`
	Errors       []string  `json:"errors"`
	CreatedCodes []string  `json:"created_codes"`
}

// UploadLogResponse represents an upload log in API responses
type UploadLogResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	FileName    string    `json:"file_name"`
	TotalRows   int       `json:"total_rows"`
	SuccessRows int       `json:"success_rows"`
	FailedRows  int       `json:"failed_rows"`
	Status      string    `json:"status"`
	Errors      []string  `json:"errors"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	UploadedAt  string    `json:"uploaded_at"`
}

// UploadListFilter filters upload log listings
type UploadListFilter struct {
	Type     string `form:"type"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
