package service

import (
	"context"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// publishOrderEvent emits an order event. Failures are logged and counted,
// never returned: the database write has already committed.
func publishOrderEvent(ctx context.Context, pub EventPublisher, logger *zap.Logger, eventType string, order *models.Order, total decimal.Decimal, reason string) {
	if pub == nil {
		return
	}

	event := &models.OrderEvent{
		BaseEvent: broker.NewBaseEvent(eventType),
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Total:     total,
		Reason:    reason,
	}

	if err := pub.PublishOrderEvent(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
		logger.Error("Failed to publish order event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.Int64("order_id", order.ID))
	}
}

func publishProductEvent(ctx context.Context, pub EventPublisher, logger *zap.Logger, eventType string, product *models.Product, actorID int64) {
	if pub == nil {
		return
	}

	event := &models.ProductEvent{
		BaseEvent:  broker.NewBaseEvent(eventType),
		ProductID:  product.ID,
		SupplierID: product.SupplierID,
		Status:     product.Status,
		ActorID:    actorID,
	}

	if err := pub.PublishProductEvent(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
		logger.Error("Failed to publish product event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.Int64("product_id", product.ID))
	}
}
