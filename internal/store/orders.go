package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
)

// ErrNoLines is returned when finalizing a cart that has no lines
var ErrNoLines = errors.New("order has no lines")

const orderSelect = `
	SELECT o.id, o.user_id, u.name AS user_name, u.email AS user_email, o.order_date, o.status,
		COALESCE((
			SELECT SUM(p.price * ol.quantity)
			FROM order_lines ol JOIN products p ON p.id = ol.product_id
			WHERE ol.order_id = o.id
		), 0) AS total,
		o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id`

const lineSelect = `
	SELECT ol.order_id, ol.product_id, p.name AS product_name, p.price, ol.quantity, ol.reserved,
		p.supplier_id, s.name AS supplier_name
	FROM order_lines ol
	JOIN products p ON p.id = ol.product_id
	LEFT JOIN suppliers s ON s.id = p.supplier_id`

// GetOrCreateCart returns the user's open cart, creating it if needed.
// The partial unique index on orders(user_id) makes this safe under
// concurrent requests.
func (s *Store) GetOrCreateCart(ctx context.Context, userID int64) (*models.Order, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (user_id, order_date, status)
		VALUES ($1, CURRENT_DATE, 'Carrinho')
		ON CONFLICT (user_id) WHERE status = 'Carrinho' DO NOTHING`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.GetCart(ctx, userID)
}

// GetCart returns the user's open cart or ErrNotFound
func (s *Store) GetCart(ctx context.Context, userID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		orderSelect+" WHERE o.user_id = $1 AND o.status = $2", userID, models.OrderStatusCart)
	if err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

// GetOrder retrieves an order by ID
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := s.db.GetContext(ctx, &order, orderSelect+" WHERE o.id = $1", id); err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

// GetOrderForUser retrieves an order only if it belongs to userID
func (s *Store) GetOrderForUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, orderSelect+" WHERE o.id = $1 AND o.user_id = $2", id, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

// ListOrdersByUser returns a user's placed orders, newest first. Carts are excluded.
func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		orderSelect+" WHERE o.user_id = $1 AND o.status <> $2 ORDER BY o.order_date DESC, o.id DESC",
		userID, models.OrderStatusCart)
	return orders, err
}

// ListOrders returns every order, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, orderSelect+" ORDER BY o.order_date DESC, o.id DESC")
	return orders, err
}

// ListReportableOrderIDs returns the IDs of all orders that are no longer carts
func (s *Store) ListReportableOrderIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	err := s.db.SelectContext(ctx, &ids,
		"SELECT id FROM orders WHERE status <> $1 ORDER BY id", models.OrderStatusCart)
	return ids, err
}

// CreateOrder inserts an order and fills its ID and timestamps
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, order_date, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, order.UserID, order.OrderDate, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	return mapError(err)
}

// UpdateOrder overwrites the user, date and status of an order
func (s *Store) UpdateOrder(ctx context.Context, order *models.Order) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET user_id = $1, order_date = $2, status = $3, updated_at = NOW() WHERE id = $4",
		order.UserID, order.OrderDate, order.Status, order.ID)
	return expectAffected(res, err)
}

// DeleteOrder removes an order and, by cascade, its lines
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	return expectAffected(res, err)
}

// GetOrderLines returns the lines of an order priced at the current product price
func (s *Store) GetOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	lines := []models.OrderLine{}
	err := s.db.SelectContext(ctx, &lines, lineSelect+" WHERE ol.order_id = $1 ORDER BY p.name, ol.product_id", orderID)
	return lines, err
}

// GetLine retrieves a single order line
func (s *Store) GetLine(ctx context.Context, orderID, productID int64) (*models.OrderLine, error) {
	var line models.OrderLine
	err := s.db.GetContext(ctx, &line,
		lineSelect+" WHERE ol.order_id = $1 AND ol.product_id = $2", orderID, productID)
	if err != nil {
		return nil, mapError(err)
	}
	return &line, nil
}

// AddLineQuantity creates the line or increments its quantity in one statement
func (s *Store) AddLineQuantity(ctx context.Context, orderID, productID int64, quantity int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = order_lines.quantity + EXCLUDED.quantity`,
		orderID, productID, quantity)
	return mapError(err)
}

// SetLineQuantity overwrites the quantity of an existing line
func (s *Store) SetLineQuantity(ctx context.Context, orderID, productID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE order_lines SET quantity = $1 WHERE order_id = $2 AND product_id = $3",
		quantity, orderID, productID)
	return expectAffected(res, err)
}

// DeleteLine removes a line
func (s *Store) DeleteLine(ctx context.Context, orderID, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM order_lines WHERE order_id = $1 AND product_id = $2", orderID, productID)
	return expectAffected(res, err)
}

// LineCheck validates a locked product against the quantity ordered
type LineCheck func(product models.Product, quantity int) error

// FinalizeCart turns a cart into a pending order in one transaction. Every
// product on the order is locked FOR UPDATE, passed to check, and has its
// stock reduced by the line quantity, which is recorded as the line's
// reservation. Any error rolls everything back.
func (s *Store) FinalizeCart(ctx context.Context, orderID int64, date time.Time, check LineCheck) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status string
	err = tx.GetContext(ctx, &status, "SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err != nil {
		return mapError(err)
	}
	if status != models.OrderStatusCart {
		return ErrNotFound
	}

	lines, err := lockLines(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return ErrNoLines
	}

	for _, l := range lines {
		if err := check(l.product, l.quantity); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2", l.quantity, l.product.ID)
		if err != nil {
			return fmt.Errorf("failed to deduct stock for product %d: %w", l.product.ID, mapError(err))
		}
	}

	_, err = tx.ExecContext(ctx, "UPDATE order_lines SET reserved = quantity WHERE order_id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to record reservations: %w", mapError(err))
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, order_date = $2, updated_at = NOW() WHERE id = $3",
		models.OrderStatusPending, date, orderID)
	if err != nil {
		return mapError(err)
	}

	return tx.Commit()
}

// CancelOrder cancels a user's order in one transaction. Each line gives
// back only the stock its checkout reserved, and the reservation is then
// cleared so a later cancel returns nothing. check sees the locked order
// and may veto.
func (s *Store) CancelOrder(ctx context.Context, orderID, userID int64, check func(*models.Order) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order,
		"SELECT id, user_id, order_date, status, created_at, updated_at FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE",
		orderID, userID)
	if err != nil {
		return mapError(err)
	}
	if err := check(&order); err != nil {
		return err
	}

	lines, err := lockLines(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.reserved == 0 {
			continue
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = stock + $1 WHERE id = $2", l.reserved, l.product.ID)
		if err != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", l.product.ID, mapError(err))
		}
	}

	_, err = tx.ExecContext(ctx, "UPDATE order_lines SET reserved = 0 WHERE order_id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to clear reservations: %w", mapError(err))
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		models.OrderStatusCancelled, orderID)
	if err != nil {
		return mapError(err)
	}

	return tx.Commit()
}

type lockedLine struct {
	product  models.Product
	quantity int
	reserved int
}

// lockLines locks the products of an order in ID order so concurrent
// checkouts acquire row locks in the same sequence.
func lockLines(ctx context.Context, tx queryer, orderID int64) ([]lockedLine, error) {
	var rows []struct {
		ProductID int64 `db:"product_id"`
		Quantity  int   `db:"quantity"`
		Reserved  int   `db:"reserved"`
	}
	err := tx.SelectContext(ctx, &rows,
		"SELECT product_id, quantity, reserved FROM order_lines WHERE order_id = $1 ORDER BY product_id", orderID)
	if err != nil {
		return nil, err
	}

	lines := make([]lockedLine, 0, len(rows))
	for _, r := range rows {
		var p models.Product
		err := tx.GetContext(ctx, &p,
			"SELECT id, name, price, stock, approved, status FROM products WHERE id = $1 FOR UPDATE", r.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock product %d: %w", r.ProductID, mapError(err))
		}
		lines = append(lines, lockedLine{product: p, quantity: r.Quantity, reserved: r.Reserved})
	}
	return lines, nil
}

type queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// ListOrdersForSupplier returns placed orders containing the supplier's
// products. Total covers only the supplier's own lines.
func (s *Store) ListOrdersForSupplier(ctx context.Context, supplierID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, `
		SELECT o.id, o.user_id, u.name AS user_name, u.email AS user_email, o.order_date, o.status,
			SUM(p.price * ol.quantity) AS total, o.created_at, o.updated_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_lines ol ON ol.order_id = o.id
		JOIN products p ON p.id = ol.product_id
		WHERE p.supplier_id = $1 AND o.status <> $2
		GROUP BY o.id, u.name, u.email
		ORDER BY o.order_date DESC, o.id DESC`,
		supplierID, models.OrderStatusCart)
	return orders, err
}

// GetSupplierOrderLines returns only the lines of an order that belong to a supplier
func (s *Store) GetSupplierOrderLines(ctx context.Context, orderID, supplierID int64) ([]models.OrderLine, error) {
	lines := []models.OrderLine{}
	err := s.db.SelectContext(ctx, &lines,
		lineSelect+" WHERE ol.order_id = $1 AND p.supplier_id = $2 ORDER BY p.name, ol.product_id",
		orderID, supplierID)
	return lines, err
}
