package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/mims/backend/internal/domain/inventory"
	"github.com/mims/backend/internal/domain/shared"
)

// StockAlertHandler logs safety-stock breaches raised by the ledger.
// Delivery to an external notification channel is out of scope here;
// operations watch the structured log stream for these entries.
type StockAlertHandler struct {
	logger *zap.Logger
}

// NewStockAlertHandler creates a new StockAlertHandler
func NewStockAlertHandler(logger *zap.Logger) *StockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAlertHandler{logger: logger}
}

// Handle processes a StockBelowSafety event
func (h *StockAlertHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	alert, ok := event.(*inventory.StockBelowSafetyEvent)
	if !ok {
		return nil
	}

	h.logger.Warn("stock below safety threshold",
		zap.String("part_code", alert.PartCode),
		zap.String("part_id", alert.PartID.String()),
		zap.String("current_qty", alert.CurrentQty.String()),
		zap.String("safety_stock", alert.SafetyStock.String()))
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (h *StockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowSafety}
}
