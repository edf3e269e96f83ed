package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bulkapp "github.com/mims/backend/internal/application/bulkimport"
	"github.com/mims/backend/internal/interfaces/http/dto"
	"github.com/mims/backend/internal/interfaces/http/middleware"
)

// BulkImportHandler handles bulk upload API endpoints
type BulkImportHandler struct {
	BaseHandler
	importService *bulkapp.ImportService
	maxRows       int
}

// NewBulkImportHandler creates a new BulkImportHandler. maxRows caps
// how many rows a single upload may carry; zero disables the cap.
func NewBulkImportHandler(importService *bulkapp.ImportService, maxRows int) *BulkImportHandler {
	return &BulkImportHandler{importService: importService, maxRows: maxRows}
}

func (h *BulkImportHandler) checkRowCap(c *gin.Context, rows int) bool {
	if h.maxRows > 0 && rows > h.maxRows {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBatchTooLarge, "Upload exceeds the maximum row count")
		return false
	}
	return true
}

// ImportTransactions handles POST /transactions/bulk. Rows are applied
// independently; a failing row is reported and skipped, never aborting
// the batch.
func (h *BulkImportHandler) ImportTransactions(c *gin.Context) {
	var req bulkapp.TransactionImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !h.checkRowCap(c, len(req.Data)) {
		return
	}

	result, err := h.importService.ImportTransactions(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportOrders handles POST /orders/bulk
func (h *BulkImportHandler) ImportOrders(c *gin.Context) {
	var req bulkapp.OrderImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !h.checkRowCap(c, len(req.Data)) {
		return
	}

	result, err := h.importService.ImportOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportProducts handles POST /products/bulk
func (h *BulkImportHandler) ImportProducts(c *gin.Context) {
	var req bulkapp.ProductImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !h.checkRowCap(c, len(req.Data)) {
		return
	}

	result, err := h.importService.ImportProducts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetUpload handles GET /uploads/:id
func (h *BulkImportHandler) GetUpload(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid upload ID")
		return
	}

	resp, err := h.importService.GetUpload(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListUploads handles GET /uploads
func (h *BulkImportHandler) ListUploads(c *gin.Context) {
	var filter bulkapp.UploadListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	uploads, total, err := h.importService.ListUploads(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, uploads, total, filter.Page, filter.PageSize)
}
