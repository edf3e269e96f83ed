package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pickingapp "github.com/mims/backend/internal/application/picking"
	"github.com/mims/backend/internal/domain/shared"
	"github.com/mims/backend/internal/interfaces/http/dto"
	"github.com/mims/backend/internal/interfaces/http/middleware"
)

// PickingHandler handles picking task API endpoints
type PickingHandler struct {
	BaseHandler
	pickingService *pickingapp.PickingService
	idempotency    shared.IdempotencyStore
	completionTTL  time.Duration
}

// NewPickingHandler creates a new PickingHandler. The idempotency store
// may be nil, in which case Idempotency-Key headers are ignored.
func NewPickingHandler(pickingService *pickingapp.PickingService, idempotency shared.IdempotencyStore, completionTTL time.Duration) *PickingHandler {
	if completionTTL <= 0 {
		completionTTL = 24 * time.Hour
	}
	return &PickingHandler{
		pickingService: pickingService,
		idempotency:    idempotency,
		completionTTL:  completionTTL,
	}
}

// Create handles POST /picking-tasks
func (h *PickingHandler) Create(c *gin.Context) {
	var req pickingapp.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pickingService.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /picking-tasks/:id
func (h *PickingHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	resp, err := h.pickingService.GetTask(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /picking-tasks
func (h *PickingHandler) List(c *gin.Context) {
	var filter pickingapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tasks, total, err := h.pickingService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tasks, total, filter.Page, filter.PageSize)
}

// ItemAction handles PUT /picking-items/:id. The action field selects
// pick, scan, skip or flag semantics for the addressed item.
func (h *PickingHandler) ItemAction(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req pickingapp.ItemActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.pickingService.ApplyItemAction(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete handles POST /picking-tasks/:id/complete. Completion writes
// outbound ledger entries, so retried requests carrying the same
// Idempotency-Key return the completed task instead of double-posting.
func (h *PickingHandler) Complete(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}
	taskID := uuid.MustParse(uri.ID)

	key := c.GetHeader("Idempotency-Key")
	if key != "" && h.idempotency != nil {
		processed, err := h.idempotency.IsProcessed(c.Request.Context(), h.completionKey(taskID, key))
		if err == nil && processed {
			resp, err := h.pickingService.GetTask(c.Request.Context(), taskID)
			if err != nil {
				h.HandleError(c, err)
				return
			}
			h.Success(c, resp)
			return
		}
	}

	result, err := h.pickingService.Complete(c.Request.Context(), taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if key != "" && h.idempotency != nil {
		// Best effort: a failed mark only means a retry may hit the
		// service-level completed check instead.
		_, _ = h.idempotency.MarkProcessed(c.Request.Context(), h.completionKey(taskID, key), h.completionTTL)
	}

	h.Success(c, result)
}

func (h *PickingHandler) completionKey(taskID uuid.UUID, key string) string {
	return "picking:complete:" + taskID.String() + ":" + key
}
