package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// LineView is an order line with its computed subtotal
type LineView struct {
	models.OrderLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// OrderDetail is an order header with priced lines and the exact total
type OrderDetail struct {
	Order *models.Order   `json:"order"`
	Lines []LineView      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func newOrderDetail(order *models.Order, lines []models.OrderLine) *OrderDetail {
	views := make([]LineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, LineView{OrderLine: l, Subtotal: l.Subtotal()})
	}

	total := models.OrderTotal(lines)
	if order != nil {
		order.Total = total
	}
	return &OrderDetail{Order: order, Lines: views, Total: total}
}

// OrderService handles placed orders: the client's history and
// cancellation, and staff order management.
type OrderService struct {
	orders   OrderStore
	products ProductReader
	users    UserStore
	catalog  CatalogCache
	events   EventPublisher
	logger   *zap.Logger
}

// NewOrderService creates a new order service. catalog may be nil.
func NewOrderService(orders OrderStore, products ProductReader, users UserStore, catalog CatalogCache, events EventPublisher) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		catalog:  catalog,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// ListMine returns the caller's placed orders with totals. Carts are excluded.
func (s *OrderService) ListMine(ctx context.Context, p *auth.Principal) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListMine")
	defer span.End()

	return s.orders.ListOrdersByUser(ctx, p.UserID)
}

// GetMine returns one of the caller's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetMine(ctx context.Context, p *auth.Principal, orderID int64) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetMine", attribute.Int64("order_id", orderID))
	defer span.End()

	order, err := s.orders.GetOrderForUser(ctx, orderID, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.orders.GetOrderLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	return newOrderDetail(order, lines), nil
}

// CancelMine cancels one of the caller's pending orders and returns its
// quantities to stock
func (s *OrderService) CancelMine(ctx context.Context, p *auth.Principal, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelMine", attribute.Int64("order_id", orderID))
	defer span.End()

	err := s.orders.CancelOrder(ctx, orderID, p.UserID, func(o *models.Order) error {
		if o.Status != models.OrderStatusPending {
			return ErrOrderNotCancellable
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		util.RecordError(span, err)
		return err
	}

	util.OrdersCancelledTotal.Inc()
	invalidateCatalog(ctx, s.catalog, s.logger)
	s.logger.Info("Order cancelled by client",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", p.UserID))

	s.publish(ctx, models.EventTypeOrderCancelled, orderID, "cancelled by client")
	return nil
}

// publish reloads the order so the event carries its current state. An
// order moved back to a cart is still announced so projections can drop it.
func (s *OrderService) publish(ctx context.Context, eventType string, orderID int64, reason string) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("Could not reload order for event", zap.Error(err), zap.Int64("order_id", orderID))
		return
	}
	publishOrderEvent(ctx, s.events, s.logger, eventType, order, order.Total, reason)
}

// ListAll returns every order for staff, newest first
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAll")
	defer span.End()

	return s.orders.ListOrders(ctx)
}

// Get returns any order with its lines
func (s *OrderService) Get(ctx context.Context, orderID int64) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Get", attribute.Int64("order_id", orderID))
	defer span.End()

	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.orders.GetOrderLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	return newOrderDetail(order, lines), nil
}

// OrderInput is the staff form for creating or editing an order
type OrderInput struct {
	Date   string `json:"date"`
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

func (s *OrderService) parseOrderInput(ctx context.Context, in OrderInput) (*models.Order, error) {
	if blank(in.Date) || in.UserID == 0 {
		return nil, invalid("order", "Preenche a data e escolhe um utilizador.")
	}
	date, err := ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, in.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.OrderStatusPending
	}

	return &models.Order{UserID: in.UserID, OrderDate: date, Status: status}, nil
}

// Create inserts an order on behalf of a user. Status defaults to pending.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	order, err := s.parseOrderInput(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		// a second open cart for the same user
		if errors.Is(err, store.ErrConflict) {
			return nil, invalid("status", "O utilizador já tem um carrinho aberto.")
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created by staff", zap.Int64("order_id", order.ID))
	if !order.IsCart() {
		publishOrderEvent(ctx, s.events, s.logger, models.EventTypeOrderUpdated, order, decimal.Zero, "created by staff")
	}
	return order, nil
}

// Update overwrites an order's date, user and status
func (s *OrderService) Update(ctx context.Context, orderID int64, in OrderInput) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Update", attribute.Int64("order_id", orderID))
	defer span.End()

	order, err := s.parseOrderInput(ctx, in)
	if err != nil {
		return err
	}
	order.ID = orderID

	err = s.orders.UpdateOrder(ctx, order)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrOrderNotFound
	case errors.Is(err, store.ErrConflict):
		return invalid("status", "O utilizador já tem um carrinho aberto.")
	case err != nil:
		return fmt.Errorf("failed to update order: %w", err)
	}

	s.publish(ctx, models.EventTypeOrderUpdated, orderID, "updated by staff")
	return nil
}

// Delete removes an order and its lines
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete", attribute.Int64("order_id", orderID))
	defer span.End()

	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info("Order deleted", zap.Int64("order_id", orderID))
	publishOrderEvent(ctx, s.events, s.logger, models.EventTypeOrderDeleted, order, decimal.Zero, "deleted by staff")
	return nil
}

// AddLine adds a product to any order, incrementing an existing line.
// Staff edits skip stock and status checks.
func (s *OrderService) AddLine(ctx context.Context, orderID, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "OrderService.AddLine",
		attribute.Int64("order_id", orderID),
		attribute.Int64("product_id", productID))
	defer span.End()

	if err := requirePositive(quantity); err != nil {
		return err
	}
	if err := s.requireOrderAndProduct(ctx, orderID, productID); err != nil {
		return err
	}

	err := s.orders.AddLineQuantity(ctx, orderID, productID, quantity)
	if errors.Is(err, store.ErrConstraint) {
		// the summed quantity left the column range
		return ErrInvalidQuantity
	}
	if err != nil {
		return fmt.Errorf("failed to add line: %w", err)
	}

	s.publish(ctx, models.EventTypeOrderUpdated, orderID, "line added")
	return nil
}

// UpdateLine overwrites the quantity of an existing line
func (s *OrderService) UpdateLine(ctx context.Context, orderID, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateLine",
		attribute.Int64("order_id", orderID),
		attribute.Int64("product_id", productID))
	defer span.End()

	if err := requirePositive(quantity); err != nil {
		return err
	}

	err := s.orders.SetLineQuantity(ctx, orderID, productID, quantity)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrLineNotFound
	case errors.Is(err, store.ErrConstraint):
		return ErrInvalidQuantity
	case err != nil:
		return fmt.Errorf("failed to update line: %w", err)
	}

	s.publish(ctx, models.EventTypeOrderUpdated, orderID, "line updated")
	return nil
}

// RemoveLine deletes a line from any order
func (s *OrderService) RemoveLine(ctx context.Context, orderID, productID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.RemoveLine",
		attribute.Int64("order_id", orderID),
		attribute.Int64("product_id", productID))
	defer span.End()

	err := s.orders.DeleteLine(ctx, orderID, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLineNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}

	s.publish(ctx, models.EventTypeOrderUpdated, orderID, "line removed")
	return nil
}

func (s *OrderService) requireOrderAndProduct(ctx context.Context, orderID, productID int64) error {
	if _, err := s.orders.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}
