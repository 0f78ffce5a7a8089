package store

import (
	"context"

	"storefront/internal/models"
)

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock, p.approved, p.status,
		p.product_type_id, pt.label AS product_type,
		p.supplier_id, s.name AS supplier_name, p.created_at
	FROM products p
	LEFT JOIN product_types pt ON pt.id = p.product_type_id
	LEFT JOIN suppliers s ON s.id = p.supplier_id`

// ListActiveProducts returns the storefront catalog: approved and active products by name
func (s *Store) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		productSelect+" WHERE p.approved AND LOWER(p.status) = LOWER($1) ORDER BY p.name, p.id",
		models.ProductStatusActive)
	return products, err
}

// ListProducts returns every product
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, productSelect+" ORDER BY p.id DESC")
	return products, err
}

// ListPendingProducts returns products waiting for approval
func (s *Store) ListPendingProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		productSelect+" WHERE NOT p.approved AND LOWER(p.status) = LOWER($1) ORDER BY p.id DESC",
		models.ProductStatusPending)
	return products, err
}

// ListProductsBySupplier returns the products owned by a supplier
func (s *Store) ListProductsBySupplier(ctx context.Context, supplierID int64) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		productSelect+" WHERE p.supplier_id = $1 ORDER BY p.id DESC", supplierID)
	return products, err
}

// GetProduct retrieves a product by ID
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := s.db.GetContext(ctx, &product, productSelect+" WHERE p.id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &product, nil
}

// CreateProduct inserts a product and fills its ID
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, approved, status, product_type_id, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.Name, p.Description, p.Price, p.Stock, p.Approved, p.Status, p.ProductTypeID, p.SupplierID,
	).Scan(&p.ID, &p.CreatedAt)
	return mapError(err)
}

// UpdateProduct overwrites a product's editable fields
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, approved = $5,
			status = $6, product_type_id = $7, supplier_id = $8
		WHERE id = $9`,
		p.Name, p.Description, p.Price, p.Stock, p.Approved, p.Status, p.ProductTypeID, p.SupplierID, p.ID)
	return expectAffected(res, err)
}

// SetProductDecision records an approval or rejection
func (s *Store) SetProductDecision(ctx context.Context, id int64, approved bool, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET approved = $1, status = $2 WHERE id = $3",
		approved, status, id)
	return expectAffected(res, err)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return expectAffected(res, err)
}

// ListProductTypes returns all product types
func (s *Store) ListProductTypes(ctx context.Context) ([]models.ProductType, error) {
	types := []models.ProductType{}
	err := s.db.SelectContext(ctx, &types, "SELECT id, label FROM product_types ORDER BY label")
	return types, err
}

// GetProductType retrieves a product type by ID
func (s *Store) GetProductType(ctx context.Context, id int64) (*models.ProductType, error) {
	var pt models.ProductType
	if err := s.db.GetContext(ctx, &pt, "SELECT id, label FROM product_types WHERE id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &pt, nil
}

func (s *Store) CreateProductType(ctx context.Context, pt *models.ProductType) error {
	err := s.db.QueryRowxContext(ctx,
		"INSERT INTO product_types (label) VALUES ($1) RETURNING id", pt.Label).Scan(&pt.ID)
	return mapError(err)
}

func (s *Store) UpdateProductType(ctx context.Context, pt *models.ProductType) error {
	res, err := s.db.ExecContext(ctx, "UPDATE product_types SET label = $1 WHERE id = $2", pt.Label, pt.ID)
	return expectAffected(res, err)
}

func (s *Store) DeleteProductType(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM product_types WHERE id = $1", id)
	return expectAffected(res, err)
}

const supplierColumns = "id, name, contact, email, nif, is_individual, address, image"

// ListSuppliers returns all suppliers
func (s *Store) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers := []models.Supplier{}
	err := s.db.SelectContext(ctx, &suppliers, "SELECT "+supplierColumns+" FROM suppliers ORDER BY name")
	return suppliers, err
}

// GetSupplier retrieves a supplier by ID
func (s *Store) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	var sup models.Supplier
	err := s.db.GetContext(ctx, &sup, "SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", id)
	if err != nil {
		return nil, mapError(err)
	}
	return &sup, nil
}

// GetSupplierByEmail resolves the supplier record linked to a user account
func (s *Store) GetSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error) {
	var sup models.Supplier
	err := s.db.GetContext(ctx, &sup,
		"SELECT "+supplierColumns+" FROM suppliers WHERE LOWER(email) = LOWER($1) ORDER BY id LIMIT 1", email)
	if err != nil {
		return nil, mapError(err)
	}
	return &sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup *models.Supplier) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO suppliers (name, contact, email, nif, is_individual, address, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		sup.Name, sup.Contact, sup.Email, sup.NIF, sup.IsIndividual, sup.Address, sup.Image,
	).Scan(&sup.ID)
	return mapError(err)
}

func (s *Store) UpdateSupplier(ctx context.Context, sup *models.Supplier) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE suppliers
		SET name = $1, contact = $2, email = $3, nif = $4, is_individual = $5, address = $6, image = $7
		WHERE id = $8`,
		sup.Name, sup.Contact, sup.Email, sup.NIF, sup.IsIndividual, sup.Address, sup.Image, sup.ID)
	return expectAffected(res, err)
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM suppliers WHERE id = $1", id)
	return expectAffected(res, err)
}
