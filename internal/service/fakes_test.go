package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/redisclient"
	"storefront/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for *store.Store
type memStore struct {
	mu     sync.Mutex
	nextID int64

	users        map[int64]models.User
	userTypes    map[int64]models.UserType
	suppliers    map[int64]models.Supplier
	productTypes map[int64]models.ProductType
	products     map[int64]models.Product
	orders       map[int64]models.Order
	lines        map[int64]map[int64]int
	reserved     map[int64]map[int64]int
	news         map[int64]models.News
	newsTypes    []models.NewsType
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[int64]models.User{},
		userTypes:    map[int64]models.UserType{},
		suppliers:    map[int64]models.Supplier{},
		productTypes: map[int64]models.ProductType{},
		products:     map[int64]models.Product{},
		orders:       map[int64]models.Order{},
		lines:        map[int64]map[int64]int{},
		reserved:     map[int64]map[int64]int{},
		news:         map[int64]models.News{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// seeding helpers

func (m *memStore) addUserType(label string) models.UserType {
	m.mu.Lock()
	defer m.mu.Unlock()
	ut := models.UserType{ID: m.id(), Label: label}
	m.userTypes[ut.ID] = ut
	return ut
}

func (m *memStore) addUser(name, email, role string) *auth.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: m.id(), Name: name, Email: email, NIF: "123456789", PasswordHash: "x"}
	if role != "" {
		r := role
		u.UserType = &r
	}
	m.users[u.ID] = u
	p := PrincipalFor(&u)
	return &p
}

func (m *memStore) addProduct(name, price string, stock int, approved bool, status string) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Product{
		ID:       m.id(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Approved: approved,
		Status:   status,
	}
	m.products[p.ID] = p
	return p
}

func (m *memStore) addSupplier(name, email string) models.Supplier {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := models.Supplier{ID: m.id(), Name: name, Email: email, Contact: "910000000", NIF: "500000000", IsIndividual: true}
	m.suppliers[s.ID] = s
	return s
}

func (m *memStore) stock(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Stock
}

func (m *memStore) setProduct(p models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// products

func (m *memStore) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) filterProducts(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListActiveProducts(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filterProducts(func(p models.Product) bool { return p.Available() })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListProducts(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filterProducts(func(models.Product) bool { return true }), nil
}

func (m *memStore) ListPendingProducts(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filterProducts(func(p models.Product) bool {
		return !p.Approved && strings.EqualFold(p.Status, models.ProductStatusPending)
	}), nil
}

func (m *memStore) ListProductsBySupplier(_ context.Context, supplierID int64) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filterProducts(func(p models.Product) bool {
		return p.SupplierID != nil && *p.SupplierID == supplierID
	}), nil
}

func (m *memStore) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.SupplierID != nil {
		if _, ok := m.suppliers[*p.SupplierID]; !ok {
			return store.ErrReferenced
		}
	}
	p.ID = m.id()
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) UpdateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) SetProductDecision(_ context.Context, id int64, approved bool, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Approved = approved
	p.Status = status
	m.products[id] = p
	return nil
}

func (m *memStore) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	for _, lines := range m.lines {
		delete(lines, id)
	}
	for _, reserved := range m.reserved {
		delete(reserved, id)
	}
	return nil
}

// product types

func (m *memStore) ListProductTypes(context.Context) ([]models.ProductType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ProductType{}
	for _, pt := range m.productTypes {
		out = append(out, pt)
	}
	return out, nil
}

func (m *memStore) GetProductType(_ context.Context, id int64) (*models.ProductType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pt, ok := m.productTypes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &pt, nil
}

func (m *memStore) CreateProductType(_ context.Context, pt *models.ProductType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pt.ID = m.id()
	m.productTypes[pt.ID] = *pt
	return nil
}

func (m *memStore) UpdateProductType(_ context.Context, pt *models.ProductType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.productTypes[pt.ID]; !ok {
		return store.ErrNotFound
	}
	m.productTypes[pt.ID] = *pt
	return nil
}

func (m *memStore) DeleteProductType(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.productTypes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.productTypes, id)
	return nil
}

// suppliers

func (m *memStore) ListSuppliers(context.Context) ([]models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Supplier{}
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) GetSupplier(_ context.Context, id int64) (*models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) GetSupplierByEmail(_ context.Context, email string) (*models.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.suppliers {
		if strings.EqualFold(s.Email, email) {
			return &s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateSupplier(_ context.Context, s *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	m.suppliers[s.ID] = *s
	return nil
}

func (m *memStore) UpdateSupplier(_ context.Context, s *models.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[s.ID]; !ok {
		return store.ErrNotFound
	}
	m.suppliers[s.ID] = *s
	return nil
}

func (m *memStore) DeleteSupplier(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

// orders

func (m *memStore) linesOf(orderID int64) []models.OrderLine {
	out := []models.OrderLine{}
	for productID, qty := range m.lines[orderID] {
		p := m.products[productID]
		line := models.OrderLine{
			OrderID:     orderID,
			ProductID:   productID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    qty,
			Reserved:    m.reserved[orderID][productID],
			SupplierID:  p.SupplierID,
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (m *memStore) withTotal(o models.Order) models.Order {
	o.Total = models.OrderTotal(m.linesOf(o.ID))
	if u, ok := m.users[o.UserID]; ok {
		o.UserName = u.Name
		o.UserEmail = u.Email
	}
	return o
}

func (m *memStore) findCart(userID int64) (models.Order, bool) {
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == models.OrderStatusCart {
			return o, true
		}
	}
	return models.Order{}, false
}

func (m *memStore) GetOrCreateCart(_ context.Context, userID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.findCart(userID); ok {
		return &cart, nil
	}
	cart := models.Order{ID: m.id(), UserID: userID, Status: models.OrderStatusCart, OrderDate: time.Now()}
	m.orders[cart.ID] = cart
	return &cart, nil
}

func (m *memStore) GetCart(_ context.Context, userID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.findCart(userID)
	if !ok {
		return nil, store.ErrNotFound
	}
	cart = m.withTotal(cart)
	return &cart, nil
}

func (m *memStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o = m.withTotal(o)
	return &o, nil
}

func (m *memStore) GetOrderForUser(_ context.Context, id, userID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.UserID != userID {
		return nil, store.ErrNotFound
	}
	o = m.withTotal(o)
	return &o, nil
}

func (m *memStore) sortedOrders(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, m.withTotal(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) ListOrdersByUser(_ context.Context, userID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedOrders(func(o models.Order) bool {
		return o.UserID == userID && o.Status != models.OrderStatusCart
	}), nil
}

func (m *memStore) ListOrders(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedOrders(func(models.Order) bool { return true }), nil
}

func (m *memStore) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.Status == models.OrderStatusCart {
		if _, ok := m.findCart(o.UserID); ok {
			return store.ErrConflict
		}
	}
	o.ID = m.id()
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) UpdateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.orders, id)
	delete(m.lines, id)
	delete(m.reserved, id)
	return nil
}

func (m *memStore) GetOrderLines(_ context.Context, orderID int64) ([]models.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linesOf(orderID), nil
}

func (m *memStore) GetLine(_ context.Context, orderID, productID int64) (*models.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.linesOf(orderID) {
		if l.ProductID == productID {
			return &l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) AddLineQuantity(_ context.Context, orderID, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lines[orderID] == nil {
		m.lines[orderID] = map[int64]int{}
	}
	m.lines[orderID][productID] += quantity
	return nil
}

func (m *memStore) SetLineQuantity(_ context.Context, orderID, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[orderID][productID]; !ok {
		return store.ErrNotFound
	}
	m.lines[orderID][productID] = quantity
	return nil
}

func (m *memStore) DeleteLine(_ context.Context, orderID, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[orderID][productID]; !ok {
		return store.ErrNotFound
	}
	delete(m.lines[orderID], productID)
	delete(m.reserved[orderID], productID)
	return nil
}

// FinalizeCart mirrors the transactional version: all checks pass before
// any stock moves
func (m *memStore) FinalizeCart(_ context.Context, orderID int64, date time.Time, check store.LineCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.OrderStatusCart {
		return store.ErrNotFound
	}
	lines := m.linesOf(orderID)
	if len(lines) == 0 {
		return store.ErrNoLines
	}
	for _, l := range lines {
		if err := check(m.products[l.ProductID], l.Quantity); err != nil {
			return err
		}
	}
	m.reserved[orderID] = map[int64]int{}
	for _, l := range lines {
		p := m.products[l.ProductID]
		p.Stock -= l.Quantity
		m.products[p.ID] = p
		m.reserved[orderID][p.ID] = l.Quantity
	}
	o.Status = models.OrderStatusPending
	o.OrderDate = date
	m.orders[orderID] = o
	return nil
}

func (m *memStore) CancelOrder(_ context.Context, orderID, userID int64, check func(*models.Order) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.UserID != userID {
		return store.ErrNotFound
	}
	if err := check(&o); err != nil {
		return err
	}
	for productID, qty := range m.reserved[orderID] {
		p := m.products[productID]
		p.Stock += qty
		m.products[productID] = p
	}
	delete(m.reserved, orderID)
	o.Status = models.OrderStatusCancelled
	m.orders[orderID] = o
	return nil
}

func (m *memStore) supplierLines(orderID, supplierID int64) []models.OrderLine {
	out := []models.OrderLine{}
	for _, l := range m.linesOf(orderID) {
		if l.SupplierID != nil && *l.SupplierID == supplierID {
			out = append(out, l)
		}
	}
	return out
}

func (m *memStore) ListOrdersForSupplier(_ context.Context, supplierID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.sortedOrders(func(o models.Order) bool { return o.Status != models.OrderStatusCart }) {
		lines := m.supplierLines(o.ID, supplierID)
		if len(lines) == 0 {
			continue
		}
		o.Total = models.OrderTotal(lines)
		out = append(out, o)
	}
	return out, nil
}

func (m *memStore) GetSupplierOrderLines(_ context.Context, orderID, supplierID int64) ([]models.OrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supplierLines(orderID, supplierID), nil
}

// users

func (m *memStore) withRole(u models.User) models.User {
	if u.UserTypeID != nil {
		if ut, ok := m.userTypes[*u.UserTypeID]; ok {
			label := ut.Label
			u.UserType = &label
		}
	}
	return u
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, m.withRole(u))
	}
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u = m.withRole(u)
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u = m.withRole(u)
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) emailTaken(email string, except int64) bool {
	for _, u := range m.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(u.Email, 0) {
		return store.ErrConflict
	}
	u.ID = m.id()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if m.emailTaken(u.Email, u.ID) {
		return store.ErrConflict
	}
	updated := *u
	updated.PasswordHash = old.PasswordHash
	m.users[u.ID] = updated
	return nil
}

func (m *memStore) UpdateUserPassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) ListUserTypes(context.Context) ([]models.UserType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.UserType{}
	for _, ut := range m.userTypes {
		out = append(out, ut)
	}
	return out, nil
}

func (m *memStore) GetUserType(_ context.Context, id int64) (*models.UserType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ut, ok := m.userTypes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ut, nil
}

func (m *memStore) GetUserTypeByLabel(_ context.Context, label string) (*models.UserType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ut := range m.userTypes {
		if strings.EqualFold(ut.Label, label) {
			return &ut, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateUserType(_ context.Context, ut *models.UserType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ut.ID = m.id()
	m.userTypes[ut.ID] = *ut
	return nil
}

func (m *memStore) UpdateUserType(_ context.Context, ut *models.UserType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.userTypes[ut.ID]; !ok {
		return store.ErrNotFound
	}
	m.userTypes[ut.ID] = *ut
	return nil
}

func (m *memStore) DeleteUserType(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.userTypes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.userTypes, id)
	return nil
}

// news

func (m *memStore) ListNews(context.Context) ([]models.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.News{}
	for _, n := range m.news {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedOn.Equal(out[j].PublishedOn) {
			return out[i].PublishedOn.After(out[j].PublishedOn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) GetNews(_ context.Context, id int64) (*models.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.news[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &n, nil
}

func (m *memStore) CreateNews(_ context.Context, n *models.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	m.news[n.ID] = *n
	return nil
}

func (m *memStore) UpdateNews(_ context.Context, n *models.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.news[n.ID]; !ok {
		return store.ErrNotFound
	}
	m.news[n.ID] = *n
	return nil
}

func (m *memStore) DeleteNews(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.news[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.news, id)
	return nil
}

func (m *memStore) ListNewsTypes(context.Context) ([]models.NewsType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.NewsType{}, m.newsTypes...), nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu       sync.Mutex
	orders   []models.OrderEvent
	products []models.ProductEvent
	err      error
}

func (r *recordingPublisher) PublishOrderEvent(_ context.Context, e *models.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *e)
	return r.err
}

func (r *recordingPublisher) PublishProductEvent(_ context.Context, e *models.ProductEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, *e)
	return r.err
}

// memCache is an in-memory CatalogCache
type memCache struct {
	products []models.Product
	ok       bool
	sets     int
}

func (c *memCache) GetCatalog(context.Context) ([]models.Product, bool, error) {
	return c.products, c.ok, nil
}

func (c *memCache) SetCatalog(_ context.Context, products []models.Product, _ time.Duration) error {
	c.products, c.ok = products, true
	c.sets++
	return nil
}

func (c *memCache) InvalidateCatalog(context.Context) error {
	c.products, c.ok = nil, false
	return nil
}

// memSessions is an in-memory SessionStore
type memSessions struct {
	sessions map[string]auth.Principal
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]auth.Principal{}}
}

func (s *memSessions) CreateSession(_ context.Context, p auth.Principal, _ time.Duration) (string, error) {
	token := uuid.New().String()
	s.sessions[token] = p
	return token, nil
}

func (s *memSessions) SaveSession(_ context.Context, token string, p auth.Principal, _ time.Duration) error {
	s.sessions[token] = p
	return nil
}

func (s *memSessions) GetSession(_ context.Context, token string) (*auth.Principal, error) {
	p, ok := s.sessions[token]
	if !ok {
		return nil, redisclient.ErrSessionNotFound
	}
	return &p, nil
}

func (s *memSessions) DeleteSession(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

// countingThrottle allows max attempts per email until reset
type countingThrottle struct {
	attempts map[string]int
}

func (t *countingThrottle) AllowLogin(_ context.Context, email string, max int, _ time.Duration) (bool, error) {
	if t.attempts == nil {
		t.attempts = map[string]int{}
	}
	key := strings.ToLower(email)
	t.attempts[key]++
	return t.attempts[key] <= max, nil
}

func (t *countingThrottle) ResetLogin(_ context.Context, email string) error {
	delete(t.attempts, strings.ToLower(email))
	return nil
}
