package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// Each fake embeds its interface; calling a method a test did not
// override panics, which fails the test loudly.

type fakeAccounts struct {
	Accounts
	sessions  map[string]*auth.Principal
	loginErr  error
	loggedOut []string
}

func (f *fakeAccounts) Authenticate(_ context.Context, token string) (*auth.Principal, error) {
	p, ok := f.sessions[token]
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return p, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, _ string) (string, *auth.Principal, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	p := &auth.Principal{UserID: 1, Email: email, Role: auth.RoleClient}
	f.sessions["new-token"] = p
	return "new-token", p, nil
}

func (f *fakeAccounts) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	delete(f.sessions, token)
	return nil
}

func (f *fakeAccounts) ListUsers(context.Context) ([]models.User, error) {
	return []models.User{}, nil
}

type fakeCarts struct {
	Carts
	added    []int
	addErr   error
	decrease []int
}

func (f *fakeCarts) AddToCart(_ context.Context, _ *auth.Principal, _ int64, quantity int) error {
	f.added = append(f.added, quantity)
	return f.addErr
}

func (f *fakeCarts) DecreaseQuantity(_ context.Context, _ *auth.Principal, _ int64, quantity int) error {
	f.decrease = append(f.decrease, quantity)
	return nil
}

func (f *fakeCarts) Checkout(_ context.Context, p *auth.Principal) (*service.OrderDetail, error) {
	return &service.OrderDetail{Order: &models.Order{ID: 7, UserID: p.UserID, Status: models.OrderStatusPending}}, nil
}

type fakeCatalog struct {
	Catalog
	approvedBy []int64
}

func (f *fakeCatalog) Storefront(context.Context) ([]models.Product, error) {
	return []models.Product{{ID: 1, Name: "Caneca"}}, nil
}

func (f *fakeCatalog) Product(_ context.Context, id int64) (*models.Product, error) {
	if id != 1 {
		return nil, service.ErrProductNotFound
	}
	return &models.Product{ID: 1, Name: "Caneca"}, nil
}

func (f *fakeCatalog) ListProducts(context.Context) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (f *fakeCatalog) Approve(_ context.Context, actor *auth.Principal, _ int64) error {
	f.approvedBy = append(f.approvedBy, actor.UserID)
	return nil
}

type fakeOrders struct {
	Orders
}

func (f *fakeOrders) GetMine(context.Context, *auth.Principal, int64) (*service.OrderDetail, error) {
	return nil, service.ErrOrderNotFound
}

func (f *fakeOrders) CancelMine(_ context.Context, _ *auth.Principal, _ int64) error {
	return service.ErrOrderNotCancellable
}

type testServer struct {
	router   *gin.Engine
	handler  *Handler
	accounts *fakeAccounts
	carts    *fakeCarts
	catalog  *fakeCatalog
}

var (
	clientPrincipal   = &auth.Principal{UserID: 1, Name: "Ana", Email: "ana@example.com", Role: auth.RoleClient}
	managerPrincipal  = &auth.Principal{UserID: 2, Name: "Gil", Email: "gil@example.com", Role: auth.RoleManager}
	adminPrincipal    = &auth.Principal{UserID: 3, Name: "Rita", Email: "rita@example.com", Role: auth.RoleAdmin}
	supplierPrincipal = &auth.Principal{UserID: 4, Name: "Olaria", Email: "olaria@example.com", Role: auth.RoleSupplier}
)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := &fakeAccounts{sessions: map[string]*auth.Principal{
		"client":   clientPrincipal,
		"manager":  managerPrincipal,
		"admin":    adminPrincipal,
		"supplier": supplierPrincipal,
	}}
	carts := &fakeCarts{}
	catalog := &fakeCatalog{}

	h := NewHandler(Services{
		Accounts: accounts,
		Catalog:  catalog,
		Carts:    carts,
		Orders:   &fakeOrders{},
	}, Options{SessionTTL: time.Hour})

	router := gin.New()
	h.SetupRoutes(router)

	return &testServer{router: router, handler: h, accounts: accounts, carts: carts, catalog: catalog}
}

// do sends a request with an optional session token and JSON body
func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(s *testServer, r *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, r)
	return resp
}
