package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CartService handles the client's open cart and its checkout
type CartService struct {
	orders   OrderStore
	products ProductReader
	catalog  CatalogCache
	events   EventPublisher
	logger   *zap.Logger
}

// NewCartService creates a new cart service. catalog may be nil.
func NewCartService(orders OrderStore, products ProductReader, catalog CatalogCache, events EventPublisher) *CartService {
	return &CartService{
		orders:   orders,
		products: products,
		catalog:  catalog,
		events:   events,
		logger:   util.GetLogger(),
	}
}

func requireClient(p *auth.Principal) error {
	if !p.IsClient() {
		return ErrNotClient
	}
	return nil
}

// View returns the cart with line subtotals. A client without a cart gets
// an empty view with a nil Order.
func (s *CartService) View(ctx context.Context, p *auth.Principal) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "CartService.View")
	defer span.End()

	if err := requireClient(p); err != nil {
		return nil, err
	}

	cart, err := s.orders.GetCart(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return newOrderDetail(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := s.orders.GetOrderLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}

	return newOrderDetail(cart, lines), nil
}

// AddToCart adds quantity units of a product to the client's cart, creating
// the cart on first use. Adding a product already in the cart increments
// its line.
func (s *CartService) AddToCart(ctx context.Context, p *auth.Principal, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart",
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", quantity))
	defer span.End()

	err := s.addToCart(ctx, p, productID, quantity)
	if err != nil {
		util.RecordError(span, err)
		util.CartRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		return err
	}

	util.CartAddsTotal.Inc()
	return nil
}

func (s *CartService) addToCart(ctx context.Context, p *auth.Principal, productID int64, quantity int) error {
	if err := requireClient(p); err != nil {
		return err
	}
	if err := requirePositive(quantity); err != nil {
		return err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if !product.Available() {
		return ErrProductInactive
	}

	cart, err := s.orders.GetOrCreateCart(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to open cart: %w", err)
	}

	existing := 0
	line, err := s.orders.GetLine(ctx, cart.ID, productID)
	switch {
	case err == nil:
		existing = line.Quantity
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("failed to load cart line: %w", err)
	}

	if existing+quantity > product.Stock {
		return ErrInsufficientStock
	}

	if err := s.orders.AddLineQuantity(ctx, cart.ID, productID, quantity); err != nil {
		return fmt.Errorf("failed to add line: %w", err)
	}

	s.logger.Info("Product added to cart",
		zap.Int64("user_id", p.UserID),
		zap.Int64("order_id", cart.ID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", existing+quantity))
	return nil
}

// DecreaseQuantity removes quantity units from a cart line. Reaching zero
// deletes the line; going below zero is rejected.
func (s *CartService) DecreaseQuantity(ctx context.Context, p *auth.Principal, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "CartService.DecreaseQuantity",
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", quantity))
	defer span.End()

	if err := requireClient(p); err != nil {
		return err
	}
	if err := requirePositive(quantity); err != nil {
		return err
	}

	cart, line, err := s.cartLine(ctx, p.UserID, productID)
	if err != nil {
		return err
	}

	remaining := line.Quantity - quantity
	switch {
	case remaining < 0:
		return ErrQuantityBelowZero
	case remaining == 0:
		err = s.orders.DeleteLine(ctx, cart.ID, productID)
	default:
		err = s.orders.SetLineQuantity(ctx, cart.ID, productID, remaining)
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrLineNotFound
	}
	return err
}

// RemoveFromCart deletes a cart line outright
func (s *CartService) RemoveFromCart(ctx context.Context, p *auth.Principal, productID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveFromCart", attribute.Int64("product_id", productID))
	defer span.End()

	if err := requireClient(p); err != nil {
		return err
	}

	cart, err := s.orders.GetCart(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCartEmpty
	}
	if err != nil {
		return err
	}

	err = s.orders.DeleteLine(ctx, cart.ID, productID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLineNotFound
	}
	return err
}

func (s *CartService) cartLine(ctx context.Context, userID, productID int64) (*models.Order, *models.OrderLine, error) {
	cart, err := s.orders.GetCart(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrCartEmpty
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cart: %w", err)
	}

	line, err := s.orders.GetLine(ctx, cart.ID, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrLineNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cart line: %w", err)
	}
	return cart, line, nil
}

// Checkout finalizes the cart into a pending order dated today. Stock is
// re-checked and deducted under row locks in the same transaction. The
// next add creates a fresh cart.
func (s *CartService) Checkout(ctx context.Context, p *auth.Principal) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Checkout")
	defer span.End()

	start := time.Now()

	if err := requireClient(p); err != nil {
		return nil, err
	}

	cart, err := s.orders.GetCart(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	err = s.orders.FinalizeCart(ctx, cart.ID, today(), checkLine)
	switch {
	case errors.Is(err, store.ErrNoLines), errors.Is(err, store.ErrNotFound):
		return nil, ErrCartEmpty
	case err != nil:
		util.RecordError(span, err)
		util.CartRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}

	util.CheckoutsTotal.Inc()
	util.CheckoutLatency.Observe(time.Since(start).Seconds())

	// the cached listing carries stock
	invalidateCatalog(ctx, s.catalog, s.logger)

	order, err := s.orders.GetOrder(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	lines, err := s.orders.GetOrderLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order lines: %w", err)
	}
	detail := newOrderDetail(order, lines)

	s.logger.Info("Cart checked out",
		zap.Int64("user_id", p.UserID),
		zap.Int64("order_id", order.ID),
		zap.String("total", detail.Total.StringFixed(2)))

	publishOrderEvent(ctx, s.events, s.logger, models.EventTypeOrderPlaced, order, detail.Total, "")
	return detail, nil
}

// checkLine runs under the product row lock during checkout
func checkLine(product models.Product, quantity int) error {
	if !product.Available() {
		return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
	}
	if product.Stock < quantity {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrNotClient):
		return "not_client"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrProductInactive):
		return "product_inactive"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	}
	return "error"
}
