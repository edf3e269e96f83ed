package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/mims/backend/internal/application/inventory"
	"github.com/mims/backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles ledger and stock state API endpoints
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledgerService: ledgerService}
}

// ApplyTransaction handles POST /transactions. Each call appends one
// ledger entry and moves the part's state under optimistic locking.
func (h *InventoryHandler) ApplyTransaction(c *gin.Context) {
	var req inventoryapp.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.ledgerService.Apply(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Transfer handles POST /transactions/transfer
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req inventoryapp.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.ledgerService.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListTransactions handles GET /transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	var filter inventoryapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txs, total, err := h.ledgerService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// GetTransactionByCode handles GET /transactions/code/:code
func (h *InventoryHandler) GetTransactionByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Transaction code is required")
		return
	}

	resp, err := h.ledgerService.GetTransactionByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListStates handles GET /inventory/states
func (h *InventoryHandler) ListStates(c *gin.Context) {
	var filter inventoryapp.StateListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	states, total, err := h.ledgerService.ListStates(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, states, total, filter.Page, filter.PageSize)
}

// LookupState handles GET /inventory/states/lookup?part_id=
func (h *InventoryHandler) LookupState(c *gin.Context) {
	partID, err := uuid.Parse(c.Query("part_id"))
	if err != nil {
		h.BadRequest(c, "A valid part_id query parameter is required")
		return
	}

	resp, err := h.ledgerService.GetStateByPart(c.Request.Context(), partID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConsistencyResult reports whether a part's state matches its ledger
type ConsistencyResult struct {
	PartID     uuid.UUID `json:"part_id"`
	Consistent bool      `json:"consistent"`
}

// VerifyConsistency handles GET /inventory/states/verify?part_id=.
// It recomputes the part's quantity from the full ledger and compares
// it against the materialized state.
func (h *InventoryHandler) VerifyConsistency(c *gin.Context) {
	partID, err := uuid.Parse(c.Query("part_id"))
	if err != nil {
		h.BadRequest(c, "A valid part_id query parameter is required")
		return
	}

	consistent, err := h.ledgerService.VerifyLedgerConsistency(c.Request.Context(), partID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ConsistencyResult{PartID: partID, Consistent: consistent})
}
