package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UserType is a role label such as "cliente" or "admin"
type UserType struct {
	ID    int64  `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
}

// User represents an account holder
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Address      *string   `db:"address" json:"address,omitempty"`
	NIF          string    `db:"nif" json:"nif"`
	UserTypeID   *int64    `db:"user_type_id" json:"user_type_id,omitempty"`
	UserType     *string   `db:"user_type" json:"user_type,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Supplier represents a product supplier, linked to a User by email
type Supplier struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Contact      string  `db:"contact" json:"contact"`
	Email        string  `db:"email" json:"email"`
	NIF          string  `db:"nif" json:"nif"`
	IsIndividual bool    `db:"is_individual" json:"is_individual"`
	Address      *string `db:"address" json:"address,omitempty"`
	Image        *string `db:"image" json:"image,omitempty"`
}

// ProductType classifies products
type ProductType struct {
	ID    int64  `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
}

// Product represents a product in the catalog
type Product struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   *string         `db:"description" json:"description,omitempty"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Stock         int             `db:"stock" json:"stock"`
	Approved      bool            `db:"approved" json:"approved"`
	Status        string          `db:"status" json:"status"`
	ProductTypeID *int64          `db:"product_type_id" json:"product_type_id,omitempty"`
	ProductType   *string         `db:"product_type" json:"product_type,omitempty"`
	SupplierID    *int64          `db:"supplier_id" json:"supplier_id,omitempty"`
	SupplierName  *string         `db:"supplier_name" json:"supplier_name,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Available reports whether the product may be added to a cart
func (p *Product) Available() bool {
	return p.Approved && strings.EqualFold(p.Status, ProductStatusActive)
}

// Order is a cart while its status is OrderStatusCart. Total is only
// populated by listing queries and detail views.
type Order struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	UserName  string          `db:"user_name" json:"user_name,omitempty"`
	UserEmail string          `db:"user_email" json:"user_email,omitempty"`
	OrderDate time.Time       `db:"order_date" json:"order_date"`
	Status    string          `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// IsCart reports whether the order is still an open cart
func (o *Order) IsCart() bool {
	return o.Status == OrderStatusCart
}

// OrderLine is a (order, product, quantity) association joined with the
// product's current price and supplier
type OrderLine struct {
	OrderID      int64           `db:"order_id" json:"order_id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	ProductName  string          `db:"product_name" json:"product_name"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Reserved     int             `db:"reserved" json:"reserved"`
	SupplierID   *int64          `db:"supplier_id" json:"supplier_id,omitempty"`
	SupplierName *string         `db:"supplier_name" json:"supplier_name,omitempty"`
}

// Subtotal returns price × quantity
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderTotal sums line subtotals exactly
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// NewsType classifies news entries
type NewsType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// News is an announcement shown on the public site
type News struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	PublishedOn time.Time `db:"published_on" json:"published_on"`
	NewsTypeID  *int64    `db:"news_type_id" json:"news_type_id,omitempty"`
	NewsType    *string   `db:"news_type" json:"news_type,omitempty"`
	AuthorID    *int64    `db:"author_id" json:"author_id,omitempty"`
	AuthorName  *string   `db:"author_name" json:"author_name,omitempty"`
}

// Order statuses. Stored values are kept in the shop's language.
const (
	OrderStatusCart      = "Carrinho"
	OrderStatusPending   = "Pendente"
	OrderStatusCancelled = "Cancelada"
)

// Product statuses
const (
	ProductStatusPending  = "Pendente"
	ProductStatusActive   = "Ativo"
	ProductStatusRejected = "Rejeitado"
)

// DateLayout is the wire format of order and publish dates
const DateLayout = "2006-01-02"
