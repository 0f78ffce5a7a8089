package service

import (
	"context"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
)

// OrderStore is the persistence the cart and order services need.
// *store.Store implements it.
type OrderStore interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*models.Order, error)
	GetCart(ctx context.Context, userID int64) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderForUser(ctx context.Context, id, userID int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	GetOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	GetLine(ctx context.Context, orderID, productID int64) (*models.OrderLine, error)
	AddLineQuantity(ctx context.Context, orderID, productID int64, quantity int) error
	SetLineQuantity(ctx context.Context, orderID, productID int64, quantity int) error
	DeleteLine(ctx context.Context, orderID, productID int64) error

	FinalizeCart(ctx context.Context, orderID int64, date time.Time, check store.LineCheck) error
	CancelOrder(ctx context.Context, orderID, userID int64, check func(*models.Order) error) error

	ListOrdersForSupplier(ctx context.Context, supplierID int64) ([]models.Order, error)
	GetSupplierOrderLines(ctx context.Context, orderID, supplierID int64) ([]models.OrderLine, error)
}

// ProductReader looks products up by ID
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// CatalogStore covers products, product types and suppliers
type CatalogStore interface {
	ProductReader
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListPendingProducts(ctx context.Context) ([]models.Product, error)
	ListProductsBySupplier(ctx context.Context, supplierID int64) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	SetProductDecision(ctx context.Context, id int64, approved bool, status string) error
	DeleteProduct(ctx context.Context, id int64) error

	ListProductTypes(ctx context.Context) ([]models.ProductType, error)
	GetProductType(ctx context.Context, id int64) (*models.ProductType, error)
	CreateProductType(ctx context.Context, pt *models.ProductType) error
	UpdateProductType(ctx context.Context, pt *models.ProductType) error
	DeleteProductType(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	GetSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, s *models.Supplier) error
	UpdateSupplier(ctx context.Context, s *models.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error
}

// UserStore covers accounts and user types
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	UpdateUserPassword(ctx context.Context, id int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error

	ListUserTypes(ctx context.Context) ([]models.UserType, error)
	GetUserType(ctx context.Context, id int64) (*models.UserType, error)
	GetUserTypeByLabel(ctx context.Context, label string) (*models.UserType, error)
	CreateUserType(ctx context.Context, ut *models.UserType) error
	UpdateUserType(ctx context.Context, ut *models.UserType) error
	DeleteUserType(ctx context.Context, id int64) error
}

// NewsStore covers news entries and their types
type NewsStore interface {
	ListNews(ctx context.Context) ([]models.News, error)
	GetNews(ctx context.Context, id int64) (*models.News, error)
	CreateNews(ctx context.Context, n *models.News) error
	UpdateNews(ctx context.Context, n *models.News) error
	DeleteNews(ctx context.Context, id int64) error
	ListNewsTypes(ctx context.Context) ([]models.NewsType, error)
}

// EventPublisher emits domain events. *broker.EventPublisher implements it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
	PublishProductEvent(ctx context.Context, event *models.ProductEvent) error
}

// CatalogCache holds the storefront listing. *redisclient.Client implements it.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]models.Product, bool, error)
	SetCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context) error
}

// SessionStore maps opaque tokens to principals
type SessionStore interface {
	CreateSession(ctx context.Context, p auth.Principal, ttl time.Duration) (string, error)
	SaveSession(ctx context.Context, token string, p auth.Principal, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*auth.Principal, error)
	DeleteSession(ctx context.Context, token string) error
}

// LoginThrottle limits login attempts per email
type LoginThrottle interface {
	AllowLogin(ctx context.Context, email string, maxAttempts int, window time.Duration) (bool, error)
	ResetLogin(ctx context.Context, email string) error
}
