package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"storefront_back_end/internal/models"

	"github.com/google/uuid"
)

const customerColumns = `id, clerk_user_id, email, name, stripe_customer_id, created_at, updated_at`

func (r *Repository) GetCustomerBySubject(ctx context.Context, subject string) (*models.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE clerk_user_id = $1`, subject)
	return scanCustomer(row)
}

func (r *Repository) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
	return scanCustomer(row)
}

// CreateCustomer inserts c, assigning an id when it has none.
func (r *Repository) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `INSERT INTO customers (id, clerk_user_id, email, name, stripe_customer_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.ID,
		c.ClerkUserID,
		c.Email,
		c.Name,
		c.StripeCustomerID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if code, _ := pqCode(err); code == uniqueViolation {
			return ErrDuplicateCustomer
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCustomerClerkUserID(ctx context.Context, customerID uuid.UUID, subject string) error {
	return r.updateCustomerColumn(ctx, "clerk_user_id", customerID, subject)
}

func (r *Repository) UpdateCustomerStripeID(ctx context.Context, customerID uuid.UUID, stripeCustomerID string) error {
	return r.updateCustomerColumn(ctx, "stripe_customer_id", customerID, stripeCustomerID)
}

// column is always one of the literals above, never caller input.
func (r *Repository) updateCustomerColumn(ctx context.Context, column string, customerID uuid.UUID, value string) error {
	query := fmt.Sprintf(`UPDATE customers SET %s = $1, updated_at = NOW() WHERE id = $2`, column)

	res, err := r.db.ExecContext(ctx, query, value, customerID)
	if err != nil {
		if code, _ := pqCode(err); code == uniqueViolation {
			return ErrDuplicateCustomer
		}
		return fmt.Errorf("update customer %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer %s: %w", column, err)
	}
	if n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row *sql.Row) (*models.Customer, error) {
	var (
		c        models.Customer
		clerkID  sql.NullString
		stripeID sql.NullString
	)
	err := row.Scan(&c.ID, &clerkID, &c.Email, &c.Name, &stripeID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	c.ClerkUserID = nullString(clerkID)
	c.StripeCustomerID = nullString(stripeID)
	return &c, nil
}
