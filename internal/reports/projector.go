package reports

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderSource reads the current state of an order
type OrderSource interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
}

// DocumentWriter persists report documents
type DocumentWriter interface {
	UpsertOrder(ctx context.Context, doc *OrderDoc) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

// Projector keeps report documents in step with the orders table. Events
// only name the order that changed; documents are always rebuilt from the
// database.
type Projector struct {
	orders OrderSource
	docs   DocumentWriter
	logger *zap.Logger
}

func NewProjector(orders OrderSource, docs DocumentWriter) *Projector {
	return &Projector{orders: orders, docs: docs, logger: util.GetLogger()}
}

// HandleOrderEvent projects the order named by an event
func (p *Projector) HandleOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	if event.EventType == models.EventTypeOrderDeleted {
		return p.remove(ctx, event.OrderID)
	}
	return p.Project(ctx, event.OrderID)
}

// Project rebuilds one order's document. Carts and missing orders have
// their documents removed.
func (p *Projector) Project(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "Projector.Project", attribute.Int64("order_id", orderID))
	defer span.End()

	order, err := p.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return p.remove(ctx, orderID)
	}
	if err != nil {
		util.ReportProjectionsTotal.WithLabelValues("error").Inc()
		util.RecordError(span, err)
		return fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order.IsCart() {
		return p.remove(ctx, orderID)
	}

	lines, err := p.orders.GetOrderLines(ctx, orderID)
	if err != nil {
		util.ReportProjectionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load lines for order %d: %w", orderID, err)
	}

	doc, err := BuildOrderDoc(order, lines)
	if err != nil {
		util.ReportProjectionsTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := p.docs.UpsertOrder(ctx, doc); err != nil {
		util.ReportProjectionsTotal.WithLabelValues("error").Inc()
		util.RecordError(span, err)
		return fmt.Errorf("failed to upsert report for order %d: %w", orderID, err)
	}

	util.ReportProjectionsTotal.WithLabelValues("upserted").Inc()
	p.logger.Debug("Order report projected", zap.Int64("order_id", orderID), zap.String("status", order.Status))
	return nil
}

func (p *Projector) remove(ctx context.Context, orderID int64) error {
	if err := p.docs.DeleteOrder(ctx, orderID); err != nil {
		util.ReportProjectionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to delete report for order %d: %w", orderID, err)
	}
	util.ReportProjectionsTotal.WithLabelValues("deleted").Inc()
	return nil
}

// Resync projects every listed order and returns how many were written.
// It stops at the first failure.
func (p *Projector) Resync(ctx context.Context, orderIDs []int64) (int, error) {
	for i, id := range orderIDs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := p.Project(ctx, id); err != nil {
			return i, err
		}
	}
	return len(orderIDs), nil
}
