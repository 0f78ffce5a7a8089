package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CatalogService manages products, product types and suppliers, and serves
// the cached storefront listing
type CatalogService struct {
	store    CatalogStore
	cache    CatalogCache
	events   EventPublisher
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(store CatalogStore, cache CatalogCache, events EventPublisher, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		events:   events,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// Storefront lists approved, active products by name. Results are served
// from the cache when possible; cache errors fall through to the database.
func (s *CatalogService) Storefront(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Storefront")
	defer span.End()

	if s.cache != nil {
		products, ok, err := s.cache.GetCatalog(ctx)
		switch {
		case err != nil:
			util.CatalogCacheTotal.WithLabelValues("error").Inc()
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		case ok:
			util.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return products, nil
		default:
			util.CatalogCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	products, err := s.store.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, products, s.cacheTTL); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// Product returns a storefront product. Products that are not approved
// and active are hidden.
func (s *CatalogService) Product(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Product", attribute.Int64("product_id", id))
	defer span.End()

	p, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Available() {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	invalidateCatalog(ctx, s.cache, s.logger)
}

// invalidateCatalog drops the cached storefront listing. Failures are
// logged; the entry still expires with its TTL.
func invalidateCatalog(ctx context.Context, cache CatalogCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateCatalog(ctx); err != nil {
		logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) getProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// ListProducts returns every product for staff
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	return s.store.ListProducts(ctx)
}

// GetProduct returns any product for staff
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct", attribute.Int64("product_id", id))
	defer span.End()

	return s.getProduct(ctx, id)
}

// ProductInput is the product form. Price and stock arrive as text so a
// comma decimal separator can be accepted.
type ProductInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	Stock         string `json:"stock"`
	Status        string `json:"status"`
	Approved      bool   `json:"approved"`
	ProductTypeID *int64 `json:"product_type_id"`
	SupplierID    *int64 `json:"supplier_id"`
}

func parseProductInput(in ProductInput) (*models.Product, error) {
	if blank(in.Name, in.Price, in.Stock) {
		return nil, invalid("product", "Preenche pelo menos nome, preço e stock.")
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	stock, err := ParseStock(in.Stock)
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.ProductStatusActive
	}

	return &models.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   optionalString(in.Description),
		Price:         price,
		Stock:         stock,
		Approved:      in.Approved,
		Status:        status,
		ProductTypeID: in.ProductTypeID,
		SupplierID:    in.SupplierID,
	}, nil
}

// CreateProduct adds a product on behalf of staff
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	p, err := parseProductInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, mapReferenceError(err, "Tipo de produto ou fornecedor inexistente.")
	}

	s.invalidate(ctx)
	s.logger.Info("Product created", zap.Int64("product_id", p.ID))
	return p, nil
}

// UpdateProduct overwrites a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct", attribute.Int64("product_id", id))
	defer span.End()

	p, err := parseProductInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id

	err = s.store.UpdateProduct(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, mapReferenceError(err, "Tipo de produto ou fornecedor inexistente.")
	}

	s.invalidate(ctx)
	return p, nil
}

// DeleteProduct removes a product. Lines referencing it are removed too.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct", attribute.Int64("product_id", id))
	defer span.End()

	err := s.store.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return mapReferenceError(err, "")
	}

	s.invalidate(ctx)
	return nil
}

// ListPending returns products awaiting a decision
func (s *CatalogService) ListPending(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListPending")
	defer span.End()

	return s.store.ListPendingProducts(ctx)
}

// Approve publishes a product to the storefront
func (s *CatalogService) Approve(ctx context.Context, actor *auth.Principal, id int64) error {
	return s.decide(ctx, actor, id, true, models.ProductStatusActive, models.EventTypeProductApproved, "approved")
}

// Reject hides a product and marks it rejected
func (s *CatalogService) Reject(ctx context.Context, actor *auth.Principal, id int64) error {
	return s.decide(ctx, actor, id, false, models.ProductStatusRejected, models.EventTypeProductRejected, "rejected")
}

func (s *CatalogService) decide(ctx context.Context, actor *auth.Principal, id int64, approved bool, status, eventType, decision string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.Decide",
		attribute.Int64("product_id", id),
		attribute.String("decision", decision))
	defer span.End()

	err := s.store.SetProductDecision(ctx, id, approved, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	util.ProductDecisionsTotal.WithLabelValues(decision).Inc()
	s.invalidate(ctx)

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		s.logger.Warn("Could not reload product for event", zap.Error(err), zap.Int64("product_id", id))
		return nil
	}

	s.logger.Info("Product decision recorded",
		zap.Int64("product_id", id),
		zap.String("decision", decision),
		zap.Int64("actor_id", actor.UserID))
	publishProductEvent(ctx, s.events, s.logger, eventType, product, actor.UserID)
	return nil
}

// ListProductTypes returns all product types
func (s *CatalogService) ListProductTypes(ctx context.Context) ([]models.ProductType, error) {
	return s.store.ListProductTypes(ctx)
}

func (s *CatalogService) GetProductType(ctx context.Context, id int64) (*models.ProductType, error) {
	pt, err := s.store.GetProductType(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return pt, err
}

func (s *CatalogService) CreateProductType(ctx context.Context, label string) (*models.ProductType, error) {
	if blank(label) {
		return nil, invalid("label", "A designação é obrigatória.")
	}
	pt := &models.ProductType{Label: strings.TrimSpace(label)}
	if err := s.store.CreateProductType(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *CatalogService) UpdateProductType(ctx context.Context, id int64, label string) error {
	if blank(label) {
		return invalid("label", "A designação é obrigatória.")
	}
	err := s.store.UpdateProductType(ctx, &models.ProductType{ID: id, Label: strings.TrimSpace(label)})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CatalogService) DeleteProductType(ctx context.Context, id int64) error {
	err := s.store.DeleteProductType(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return mapReferenceError(err, "")
	}
	s.invalidate(ctx)
	return nil
}

// SupplierInput is the supplier form
type SupplierInput struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Email        string `json:"email"`
	NIF          string `json:"nif"`
	IsIndividual bool   `json:"is_individual"`
	Address      string `json:"address"`
	Image        string `json:"image"`
}

func parseSupplierInput(in SupplierInput) (*models.Supplier, error) {
	if blank(in.Name, in.Contact, in.Email, in.NIF) {
		return nil, invalid("supplier", "Preenche todos os campos obrigatórios.")
	}
	nif := strings.TrimSpace(in.NIF)
	if err := validateNIF(nif); err != nil {
		return nil, err
	}
	address := optionalString(in.Address)
	if !in.IsIndividual && address == nil {
		return nil, invalid("address", "Para fornecedores não singulares, a morada é obrigatória.")
	}

	return &models.Supplier{
		Name:         strings.TrimSpace(in.Name),
		Contact:      strings.TrimSpace(in.Contact),
		Email:        strings.TrimSpace(in.Email),
		NIF:          nif,
		IsIndividual: in.IsIndividual,
		Address:      address,
		Image:        optionalString(in.Image),
	}, nil
}

// ListSuppliers returns all suppliers
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListSuppliers")
	defer span.End()

	return s.store.ListSuppliers(ctx)
}

func (s *CatalogService) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	sup, err := s.store.GetSupplier(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSupplierNotFound
	}
	return sup, err
}

func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateSupplier")
	defer span.End()

	sup, err := parseSupplierInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}

	s.logger.Info("Supplier created", zap.Int64("supplier_id", sup.ID))
	return sup, nil
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (*models.Supplier, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateSupplier", attribute.Int64("supplier_id", id))
	defer span.End()

	sup, err := parseSupplierInput(in)
	if err != nil {
		return nil, err
	}
	sup.ID = id

	err = s.store.UpdateSupplier(ctx, sup)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return sup, nil
}

func (s *CatalogService) DeleteSupplier(ctx context.Context, id int64) error {
	err := s.store.DeleteSupplier(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSupplierNotFound
	}
	if err != nil {
		return mapReferenceError(err, "")
	}
	s.invalidate(ctx)
	return nil
}

// mapReferenceError turns a foreign key failure into ErrInUse or, when
// message is set, a validation error
func mapReferenceError(err error, message string) error {
	if !errors.Is(err, store.ErrReferenced) {
		return err
	}
	if message != "" {
		return invalid("reference", message)
	}
	return ErrInUse
}
