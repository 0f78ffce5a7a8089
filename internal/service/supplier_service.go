package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SupplierService is the self-service area for supplier accounts. The
// caller's supplier record is resolved by email on every call.
type SupplierService struct {
	catalog CatalogStore
	orders  OrderStore
	events  EventPublisher
	logger  *zap.Logger
}

func NewSupplierService(catalog CatalogStore, orders OrderStore, events EventPublisher) *SupplierService {
	return &SupplierService{
		catalog: catalog,
		orders:  orders,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// Me resolves the supplier linked to the caller's email
func (s *SupplierService) Me(ctx context.Context, p *auth.Principal) (*models.Supplier, error) {
	if !p.IsSupplier() {
		return nil, ErrNotSupplier
	}
	sup, err := s.catalog.GetSupplierByEmail(ctx, p.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSupplier
	}
	return sup, err
}

// ListProducts returns the caller's products in any status
func (s *SupplierService) ListProducts(ctx context.Context, p *auth.Principal) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "SupplierService.ListProducts")
	defer span.End()

	sup, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.catalog.ListProductsBySupplier(ctx, sup.ID)
}

// SubmitProduct proposes a product for approval. It stays hidden from the
// storefront until staff approve it.
func (s *SupplierService) SubmitProduct(ctx context.Context, p *auth.Principal, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "SupplierService.SubmitProduct")
	defer span.End()

	sup, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}

	product, err := parseProductInput(in)
	if err != nil {
		return nil, err
	}
	product.Status = models.ProductStatusPending
	product.Approved = false
	product.SupplierID = &sup.ID

	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		return nil, mapReferenceError(err, "Tipo de produto inexistente.")
	}

	s.logger.Info("Product submitted for approval",
		zap.Int64("product_id", product.ID),
		zap.Int64("supplier_id", sup.ID))
	publishProductEvent(ctx, s.events, s.logger, models.EventTypeProductSubmitted, product, p.UserID)
	return product, nil
}

// ListOrders returns placed orders that contain the caller's products.
// Each total covers only the caller's lines.
func (s *SupplierService) ListOrders(ctx context.Context, p *auth.Principal) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "SupplierService.ListOrders")
	defer span.End()

	sup, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.orders.ListOrdersForSupplier(ctx, sup.ID)
}

// GetOrder returns an order restricted to the caller's lines. Orders with
// none of the caller's products are reported as not found.
func (s *SupplierService) GetOrder(ctx context.Context, p *auth.Principal, orderID int64) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "SupplierService.GetOrder", attribute.Int64("order_id", orderID))
	defer span.End()

	sup, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.IsCart() {
		return nil, ErrOrderNotFound
	}

	lines, err := s.orders.GetSupplierOrderLines(ctx, orderID, sup.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrOrderNotFound
	}
	return newOrderDetail(order, lines), nil
}
