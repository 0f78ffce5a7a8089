package service

import (
	"context"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type supplierFixture struct {
	*cartFixture
	suppliers *SupplierService
	owner     *auth.Principal
	olaria    models.Supplier
}

func newSupplierFixture(t *testing.T) *supplierFixture {
	f := newCartFixture(t)
	olaria := f.db.addSupplier("Olaria", "olaria@example.com")
	return &supplierFixture{
		cartFixture: f,
		suppliers:   NewSupplierService(f.db, f.db, f.events),
		owner:       f.db.addUser("Olaria", "OLARIA@example.com", "fornecedor"),
		olaria:      olaria,
	}
}

func TestSupplierResolvedByEmail(t *testing.T) {
	f := newSupplierFixture(t)
	ctx := context.Background()

	sup, err := f.suppliers.Me(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, f.olaria.ID, sup.ID)

	orphan := f.db.addUser("Sem registo", "nobody@example.com", "fornecedor")
	_, err = f.suppliers.Me(ctx, orphan)
	assert.ErrorIs(t, err, ErrNotSupplier)

	_, err = f.suppliers.Me(ctx, f.client)
	assert.ErrorIs(t, err, ErrNotSupplier)
}

func TestSubmitProductAwaitsApproval(t *testing.T) {
	f := newSupplierFixture(t)
	ctx := context.Background()

	p, err := f.suppliers.SubmitProduct(ctx, f.owner, ProductInput{
		Name:     "Jarra",
		Price:    "15,00",
		Stock:    "4",
		Status:   models.ProductStatusActive,
		Approved: true,
	})
	require.NoError(t, err)
	assert.False(t, p.Approved)
	assert.Equal(t, models.ProductStatusPending, p.Status)
	require.NotNil(t, p.SupplierID)
	assert.Equal(t, f.olaria.ID, *p.SupplierID)

	require.Len(t, f.events.products, 1)
	assert.Equal(t, models.EventTypeProductSubmitted, f.events.products[0].EventType)

	mine, err := f.suppliers.ListProducts(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Jarra", mine[0].Name)

	assert.ErrorIs(t, f.carts.AddToCart(ctx, f.client, p.ID, 1), ErrProductInactive)
}

func TestSupplierOrdersShowOnlyOwnLines(t *testing.T) {
	f := newSupplierFixture(t)
	ctx := context.Background()

	vase := f.mug
	vase.SupplierID = &f.olaria.ID
	f.db.setProduct(vase)
	plate := f.db.addProduct("Prato", "12.00", 5, true, models.ProductStatusActive)

	require.NoError(t, f.carts.AddToCart(ctx, f.client, vase.ID, 2))
	require.NoError(t, f.carts.AddToCart(ctx, f.client, plate.ID, 1))
	mixed, err := f.carts.Checkout(ctx, f.client)
	require.NoError(t, err)

	require.NoError(t, f.carts.AddToCart(ctx, f.client, plate.ID, 1))
	foreign, err := f.carts.Checkout(ctx, f.client)
	require.NoError(t, err)

	// an open cart with the supplier's product is not an order yet
	require.NoError(t, f.carts.AddToCart(ctx, f.client, vase.ID, 1))

	orders, err := f.suppliers.ListOrders(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mixed.Order.ID, orders[0].ID)
	assert.Equal(t, "19.98", orders[0].Total.StringFixed(2))

	detail, err := f.suppliers.GetOrder(ctx, f.owner, mixed.Order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, vase.ID, detail.Lines[0].ProductID)
	assert.Equal(t, "19.98", detail.Total.StringFixed(2))

	_, err = f.suppliers.GetOrder(ctx, f.owner, foreign.Order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	cart, err := f.carts.View(ctx, f.client)
	require.NoError(t, err)
	_, err = f.suppliers.GetOrder(ctx, f.owner, cart.Order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
