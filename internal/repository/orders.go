package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"storefront_back_end/internal/models"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderExistsByPaymentID reports whether an order already carries the
// processor payment reference.
func (r *Repository) OrderExistsByPaymentID(ctx context.Context, paymentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE stripe_payment_id = $1)`, paymentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query order by payment id: %w", err)
	}
	return exists, nil
}

// CreateOrderWithStock inserts the order, all of its items and the stock
// decrement for every item in one transaction. Nothing is visible unless
// every statement succeeds. Stock has no floor.
func (r *Repository) CreateOrderWithStock(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertOrder := `INSERT INTO orders (id, order_number, total, status, stripe_payment_id, customer_id, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, NOW())
	                RETURNING created_at`

	err = tx.QueryRowContext(ctx, insertOrder,
		order.ID,
		order.OrderNumber,
		order.Total,
		order.Status,
		order.StripePaymentID,
		order.CustomerID,
	).Scan(&order.CreatedAt)
	if err != nil {
		switch code, constraint := pqCode(err); {
		case code == uniqueViolation && constraint == constraintOrderPayment:
			return ErrDuplicatePayment
		case code == uniqueViolation && constraint == constraintOrderNumber:
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if len(order.Items) > 0 {
		query, args := orderItemsInsert(order)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if code, _ := pqCode(err); code == foreignKeyViolation {
				return fmt.Errorf("insert order items: %w", ErrProductNotFound)
			}
			return fmt.Errorf("insert order items: %w", err)
		}
	}

	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2`,
			item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}
		if n == 0 {
			return fmt.Errorf("decrement stock for %s: %w", item.ProductID, ErrProductNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// orderItemsInsert builds one multi-row INSERT for every item of the order.
func orderItemsInsert(order *models.Order) (string, []any) {
	var (
		sb   strings.Builder
		args = make([]any, 0, len(order.Items)*5)
	)
	sb.WriteString(`INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase) VALUES `)

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID

		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceAtPurchase)
	}
	return sb.String(), args
}

// GetOrderByPaymentID loads an order and its items by payment reference.
func (r *Repository) GetOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	query := `SELECT id, order_number, total, status, stripe_payment_id, customer_id, created_at
	          FROM orders WHERE stripe_payment_id = $1`

	var order models.Order
	err := r.db.QueryRowContext(ctx, query, paymentID).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.Total,
		&order.Status,
		&order.StripePaymentID,
		&order.CustomerID,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by payment id: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price_at_purchase
		 FROM order_items WHERE order_id = $1 ORDER BY product_id`, order.ID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return &order, nil
}

// ListOrderSummaries returns the customer's orders newest first.
func (r *Repository) ListOrderSummaries(ctx context.Context, customerID uuid.UUID) ([]models.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_number, status, total, created_at
		 FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer: %w", err)
	}
	defer rows.Close()

	var (
		orders = []models.OrderSummary{}
		ids    []string
		index  = map[uuid.UUID]int{}
	)
	for rows.Next() {
		var o models.OrderSummary
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.ItemImages = []string{}
		o.ItemNames = []string{}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID.String())
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT oi.order_id, oi.quantity, p.name,
		        (SELECT pi.url FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.position ASC LIMIT 1)
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = ANY($1::uuid[])
		 ORDER BY oi.order_id, p.name`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID  uuid.UUID
			quantity int
			name     string
			image    sql.NullString
		)
		if err := itemRows.Scan(&orderID, &quantity, &name, &image); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o := &orders[index[orderID]]
		o.ItemCount += quantity
		o.ItemNames = append(o.ItemNames, name)
		if image.Valid {
			o.ItemImages = append(o.ItemImages, image.String)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// GetOrderDetail loads one order with its customer and items. OwnerSubject
// is filled so callers can enforce ownership.
func (r *Repository) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.OrderDetail, error) {
	var d models.OrderDetail
	err := r.db.QueryRowContext(ctx,
		`SELECT o.order_number, o.status, o.total, o.created_at, c.email, COALESCE(c.clerk_user_id, '')
		 FROM orders o JOIN customers c ON c.id = o.customer_id
		 WHERE o.id = $1`, orderID).Scan(
		&d.OrderNumber, &d.Status, &d.Total, &d.CreatedAt, &d.Email, &d.OwnerSubject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order detail: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT oi.id, oi.quantity, oi.price_at_purchase, p.name, p.slug,
		        (SELECT pi.url FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.position ASC LIMIT 1)
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY p.name`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order detail items: %w", err)
	}
	defer rows.Close()

	d.Items = []models.OrderDetailItem{}
	for rows.Next() {
		var (
			item  models.OrderDetailItem
			price decimal.Decimal
			image sql.NullString
		)
		if err := rows.Scan(&item.Key, &item.Quantity, &price, &item.Product.Name, &item.Product.Slug, &image); err != nil {
			return nil, fmt.Errorf("scan order detail item: %w", err)
		}
		item.PriceAtPurchase = price
		item.Product.ImageURL = nullString(image)
		d.Items = append(d.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return &d, nil
}
