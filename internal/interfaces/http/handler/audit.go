package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditapp "github.com/mims/backend/internal/application/audit"
	"github.com/mims/backend/internal/interfaces/http/dto"
	"github.com/mims/backend/internal/interfaces/http/middleware"
)

// AuditHandler handles inventory audit API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Create handles POST /audits. The system quantities of all in-scope
// parts are snapshotted at creation time.
func (h *AuditHandler) Create(c *gin.Context) {
	var req auditapp.CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.auditService.CreateAudit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /audits/:id
func (h *AuditHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	resp, err := h.auditService.GetAudit(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /audits
func (h *AuditHandler) List(c *gin.Context) {
	var filter auditapp.AuditListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	audits, total, err := h.auditService.ListAudits(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, audits, total, filter.Page, filter.PageSize)
}

// RecordCount handles PUT /audit-items/:id
func (h *AuditHandler) RecordCount(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid audit item ID")
		return
	}

	var req auditapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.auditService.RecordCount(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete handles POST /audits/:id/complete
func (h *AuditHandler) Complete(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	resp, err := h.auditService.Complete(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve handles POST /audits/:id/approve. Approval signs off the
// count record; inventory itself is untouched.
func (h *AuditHandler) Approve(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid audit ID")
		return
	}

	var req auditapp.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.auditService.Approve(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
