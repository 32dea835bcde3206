package repository

import (
	"context"
	"fmt"
	"storefront_back_end/internal/models"

	"github.com/lib/pq"
)

// GetProductStocks returns id and stock for every known id. Unknown ids are
// left out.
func (r *Repository) GetProductStocks(ctx context.Context, ids []string) ([]models.ProductStock, error) {
	stocks := []models.ProductStock{}
	if len(ids) == 0 {
		return stocks, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, stock FROM products WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query product stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProductStock
		if err := rows.Scan(&s.ID, &s.Stock); err != nil {
			return nil, fmt.Errorf("scan product stock: %w", err)
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return stocks, nil
}

// CreateProduct inserts a catalog row. Used by seeding and tests.
func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `INSERT INTO products (id, name, slug, description, price, stock, material, color, category_id, featured)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.Stock,
		p.Material, p.Color, p.CategoryID, p.Featured,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	for _, img := range p.Images {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO product_images (id, product_id, url, position) VALUES ($1, $2, $3, $4)`,
			img.ID, p.ID, img.URL, img.Position); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}
