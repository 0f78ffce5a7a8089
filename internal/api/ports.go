package api

import (
	"context"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/reports"
	"storefront/internal/service"
)

// The handler depends on these narrow views of the services so routes can
// be exercised with fakes.

type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *auth.Principal, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	Profile(ctx context.Context, p *auth.Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, token string, p *auth.Principal, in service.ProfileInput) (*auth.Principal, error)
	ChangePassword(ctx context.Context, p *auth.Principal, current, next, confirm string) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, in service.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, in service.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListUserTypes(ctx context.Context) ([]models.UserType, error)
	GetUserType(ctx context.Context, id int64) (*models.UserType, error)
	CreateUserType(ctx context.Context, label string) (*models.UserType, error)
	UpdateUserType(ctx context.Context, id int64, label string) error
	DeleteUserType(ctx context.Context, id int64) error
}

type Catalog interface {
	Storefront(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id int64) (*models.Product, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in service.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListPending(ctx context.Context) ([]models.Product, error)
	Approve(ctx context.Context, actor *auth.Principal, id int64) error
	Reject(ctx context.Context, actor *auth.Principal, id int64) error

	ListProductTypes(ctx context.Context) ([]models.ProductType, error)
	GetProductType(ctx context.Context, id int64) (*models.ProductType, error)
	CreateProductType(ctx context.Context, label string) (*models.ProductType, error)
	UpdateProductType(ctx context.Context, id int64, label string) error
	DeleteProductType(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, in service.SupplierInput) (*models.Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, in service.SupplierInput) (*models.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error
}

type Carts interface {
	View(ctx context.Context, p *auth.Principal) (*service.OrderDetail, error)
	AddToCart(ctx context.Context, p *auth.Principal, productID int64, quantity int) error
	DecreaseQuantity(ctx context.Context, p *auth.Principal, productID int64, quantity int) error
	RemoveFromCart(ctx context.Context, p *auth.Principal, productID int64) error
	Checkout(ctx context.Context, p *auth.Principal) (*service.OrderDetail, error)
}

type Orders interface {
	ListMine(ctx context.Context, p *auth.Principal) ([]models.Order, error)
	GetMine(ctx context.Context, p *auth.Principal, orderID int64) (*service.OrderDetail, error)
	CancelMine(ctx context.Context, p *auth.Principal, orderID int64) error

	ListAll(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, orderID int64) (*service.OrderDetail, error)
	Create(ctx context.Context, in service.OrderInput) (*models.Order, error)
	Update(ctx context.Context, orderID int64, in service.OrderInput) error
	Delete(ctx context.Context, orderID int64) error
	AddLine(ctx context.Context, orderID, productID int64, quantity int) error
	UpdateLine(ctx context.Context, orderID, productID int64, quantity int) error
	RemoveLine(ctx context.Context, orderID, productID int64) error
}

type Suppliers interface {
	Me(ctx context.Context, p *auth.Principal) (*models.Supplier, error)
	ListProducts(ctx context.Context, p *auth.Principal) ([]models.Product, error)
	SubmitProduct(ctx context.Context, p *auth.Principal, in service.ProductInput) (*models.Product, error)
	ListOrders(ctx context.Context, p *auth.Principal) ([]models.Order, error)
	GetOrder(ctx context.Context, p *auth.Principal, orderID int64) (*service.OrderDetail, error)
}

type News interface {
	List(ctx context.Context) ([]models.News, error)
	Get(ctx context.Context, id int64) (*models.News, error)
	ListTypes(ctx context.Context) ([]models.NewsType, error)
	Create(ctx context.Context, actor *auth.Principal, in service.NewsInput) (*models.News, error)
	Update(ctx context.Context, actor *auth.Principal, id int64, in service.NewsInput) (*models.News, error)
	Delete(ctx context.Context, id int64) error
}

type Reports interface {
	TopSuppliers(ctx context.Context, status string, limit int) ([]reports.SupplierSales, error)
}

// Services bundles everything the routes call. Reports may be nil when
// the reporting store is not configured.
type Services struct {
	Accounts  Accounts
	Catalog   Catalog
	Carts     Carts
	Orders    Orders
	Suppliers Suppliers
	News      News
	Reports   Reports
}
