package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/mims/backend/internal/application/catalog"
	"github.com/mims/backend/internal/interfaces/http/dto"
	"github.com/mims/backend/internal/interfaces/http/middleware"
)

// PartHandler handles part master API endpoints
type PartHandler struct {
	BaseHandler
	partService *catalogapp.PartService
}

// NewPartHandler creates a new PartHandler
func NewPartHandler(partService *catalogapp.PartService) *PartHandler {
	return &PartHandler{partService: partService}
}

// Create handles POST /parts
func (h *PartHandler) Create(c *gin.Context) {
	var req catalogapp.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.partService.CreatePart(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /parts/:id
func (h *PartHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid part ID")
		return
	}

	resp, err := h.partService.GetPart(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode handles GET /parts/by-code/:code
func (h *PartHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Part code is required")
		return
	}

	resp, err := h.partService.GetPartByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /parts
func (h *PartHandler) List(c *gin.Context) {
	var filter catalogapp.PartListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	parts, total, err := h.partService.ListParts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, parts, total, filter.Page, filter.PageSize)
}

// Update handles PUT /parts/:id
func (h *PartHandler) Update(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid part ID")
		return
	}

	var req catalogapp.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.partService.UpdatePart(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate handles POST /parts/:id/activate
func (h *PartHandler) Activate(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid part ID")
		return
	}

	resp, err := h.partService.ActivatePart(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate handles DELETE /parts/:id. Parts are never hard-deleted;
// deactivation removes them from active listings while preserving the
// ledger history that references them.
func (h *PartHandler) Deactivate(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid part ID")
		return
	}

	resp, err := h.partService.DeactivatePart(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
