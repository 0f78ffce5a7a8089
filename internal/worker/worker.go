package worker

import (
	"context"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// OrderEventHandler reacts to decoded order events
type OrderEventHandler interface {
	HandleOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// ReportWorker feeds store events into the reports projection
type ReportWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewReportWorker creates a worker that routes order events to projector
func NewReportWorker(consumer *broker.Consumer, projector OrderEventHandler) *ReportWorker {
	return &ReportWorker{
		consumer:     consumer,
		eventHandler: NewEventHandler(projector),
		logger:       util.GetLogger(),
	}
}

// NewEventHandler wires the order handler into a broker dispatcher.
// Product events are logged only.
func NewEventHandler(projector OrderEventHandler) *broker.EventHandler {
	logger := util.GetLogger()
	h := broker.NewEventHandler()
	h.OnOrderEvent(func(ctx context.Context, e *models.OrderEvent) error {
		logger.Debug("Projecting order event",
			zap.String("event_id", e.EventID),
			zap.String("event_type", e.EventType),
			zap.Int64("order_id", e.OrderID))
		return projector.HandleOrderEvent(ctx, e)
	})
	h.OnProductEvent(func(_ context.Context, e *models.ProductEvent) error {
		logger.Info("Product workflow event",
			zap.String("event_type", e.EventType),
			zap.Int64("product_id", e.ProductID),
			zap.String("status", e.Status))
		return nil
	})
	return h
}

// Start consumes until ctx is cancelled
func (w *ReportWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting report worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the consumer
func (w *ReportWorker) Stop() error {
	w.logger.Info("Stopping report worker")
	return w.consumer.Close()
}
