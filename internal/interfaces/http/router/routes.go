package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mims/backend/internal/interfaces/http/handler"
)

// Handlers bundles every handler the API surface exposes
type Handlers struct {
	Health     *handler.HealthHandler
	Parts      *handler.PartHandler
	Inventory  *handler.InventoryHandler
	Picking    *handler.PickingHandler
	Audits     *handler.AuditHandler
	BulkImport *handler.BulkImportHandler
}

// registrarFunc adapts a plain function to the RouteRegistrar interface
type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) {
	f(rg)
}

// Setup wires all API routes onto the engine under /api/v1
func Setup(engine *gin.Engine, h Handlers) {
	r := NewRouter(engine, WithAPIVersion("v1"))

	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/health", h.Health.Check)
	}))

	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/parts", h.Parts.List)
		rg.POST("/parts", h.Parts.Create)
		rg.GET("/parts/by-code/:code", h.Parts.GetByCode)
		rg.GET("/parts/:id", h.Parts.Get)
		rg.PUT("/parts/:id", h.Parts.Update)
		rg.DELETE("/parts/:id", h.Parts.Deactivate)
		rg.POST("/parts/:id/activate", h.Parts.Activate)
	}))

	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/inventory/states", h.Inventory.ListStates)
		rg.GET("/inventory/states/lookup", h.Inventory.LookupState)
		rg.GET("/inventory/states/verify", h.Inventory.VerifyConsistency)

		rg.GET("/transactions", h.Inventory.ListTransactions)
		rg.POST("/transactions", h.Inventory.ApplyTransaction)
		rg.POST("/transactions/transfer", h.Inventory.Transfer)
		rg.GET("/transactions/code/:code", h.Inventory.GetTransactionByCode)
	}))

	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/picking-tasks", h.Picking.List)
		rg.POST("/picking-tasks", h.Picking.Create)
		rg.GET("/picking-tasks/:id", h.Picking.Get)
		rg.POST("/picking-tasks/:id/complete", h.Picking.Complete)
		rg.PUT("/picking-items/:id", h.Picking.ItemAction)
	}))

	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/audits", h.Audits.List)
		rg.POST("/audits", h.Audits.Create)
		rg.GET("/audits/:id", h.Audits.Get)
		rg.POST("/audits/:id/complete", h.Audits.Complete)
		rg.POST("/audits/:id/approve", h.Audits.Approve)
		rg.PUT("/audit-items/:id", h.Audits.RecordCount)
	}))

	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.POST("/transactions/bulk", h.BulkImport.ImportTransactions)
		rg.POST("/orders/bulk", h.BulkImport.ImportOrders)
		rg.POST("/products/bulk", h.BulkImport.ImportProducts)
		rg.GET("/uploads", h.BulkImport.ListUploads)
		rg.GET("/uploads/:id", h.BulkImport.GetUpload)
	}))

	r.Setup()
}
