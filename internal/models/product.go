package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Material    string          `json:"material,omitempty" db:"material"`
	Color       string          `json:"color,omitempty" db:"color"`
	CategoryID  *string         `json:"category_id,omitempty" db:"category_id"`
	Featured    bool            `json:"featured" db:"featured"`
	Images      []ProductImage  `json:"images,omitempty"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

// ProductStock is the read model behind the stock lookup endpoint.
type ProductStock struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}
