package inventory

import (
	"context"
	"fmt"

	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Alert types carried by a ReorderAlert
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// ReorderAlertHandler turns StockBelowReorderPoint events into purchasing alerts
type ReorderAlertHandler struct {
	logger   *zap.Logger
	notifier ReorderAlertNotifier
}

// ReorderAlertNotifier sends reorder alerts to purchasing staff
type ReorderAlertNotifier interface {
	SendAlert(ctx context.Context, alert ReorderAlert) error
}

// ReorderAlert asks purchasing to restock a product at a branch
type ReorderAlert struct {
	BranchID     string `json:"branch_id"`
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	OnHand       int64  `json:"on_hand"`
	ReorderPoint int64  `json:"reorder_point"`
	SuggestedQty int64  `json:"suggested_qty"`
	AlertType    string `json:"alert_type"`
}

// NewReorderAlertHandler creates a new handler for StockBelowReorderPoint events
func NewReorderAlertHandler(logger *zap.Logger) *ReorderAlertHandler {
	return &ReorderAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *ReorderAlertHandler) WithNotifier(notifier ReorderAlertNotifier) *ReorderAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *ReorderAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderPoint}
}

// Handle processes a StockBelowReorderPointEvent
func (h *ReorderAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	reorderEvent, ok := event.(*inventory.StockBelowReorderPointEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowReorderPoint),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowReorderPoint, event.EventType())
	}

	h.logger.Warn("stock below reorder point",
		zap.String("branch_id", event.BranchID().String()),
		zap.String("product_id", reorderEvent.ProductID.String()),
		zap.String("sku", reorderEvent.SKU),
		zap.Int64("on_hand", reorderEvent.OnHand),
		zap.Int64("reorder_point", reorderEvent.ReorderPoint),
	)

	alertType := AlertTypeLowStock
	if reorderEvent.OnHand <= 0 {
		alertType = AlertTypeOutOfStock
	}
	suggested := reorderEvent.ReorderQty
	if suggested <= 0 {
		suggested = reorderEvent.ReorderPoint - reorderEvent.OnHand
	}

	alert := ReorderAlert{
		BranchID:     event.BranchID().String(),
		ProductID:    reorderEvent.ProductID.String(),
		SKU:          reorderEvent.SKU,
		OnHand:       reorderEvent.OnHand,
		ReorderPoint: reorderEvent.ReorderPoint,
		SuggestedQty: suggested,
		AlertType:    alertType,
	}

	if h.notifier != nil {
		// A failed notification does not fail event handling
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("failed to send reorder alert",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*ReorderAlertHandler)(nil)

// LoggingReorderNotifier writes alerts to the log
type LoggingReorderNotifier struct {
	logger *zap.Logger
}

// NewLoggingReorderNotifier creates a new logging notifier
func NewLoggingReorderNotifier(logger *zap.Logger) *LoggingReorderNotifier {
	return &LoggingReorderNotifier{
		logger: logger,
	}
}

// SendAlert logs the reorder alert
func (n *LoggingReorderNotifier) SendAlert(ctx context.Context, alert ReorderAlert) error {
	n.logger.Warn("REORDER ALERT",
		zap.String("type", alert.AlertType),
		zap.String("branch_id", alert.BranchID),
		zap.String("sku", alert.SKU),
		zap.Int64("on_hand", alert.OnHand),
		zap.Int64("suggested_qty", alert.SuggestedQty),
	)
	return nil
}

var _ ReorderAlertNotifier = (*LoggingReorderNotifier)(nil)
