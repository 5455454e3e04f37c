// Package product manages the product catalog and its persistence.
package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Product is one catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ViewImage   string    `json:"viewImage,omitempty"`
	HoverImage  string    `json:"hoverImage,omitempty"`
	URL         string    `json:"url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Submenu     string    `json:"submenu,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrTitleTaken is returned when a product title is already in use.
var ErrTitleTaken = errors.New("product name is already there")

// Repository handles all product database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, title, description, view_image, hover_image, url, category, submenu, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ViewImage, &p.HoverImage,
		&p.URL, &p.Category, &p.Submenu, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new product and returns the created record.
func (r *Repository) Create(ctx context.Context, p *Product) (*Product, error) {
	created, err := scanProduct(r.db.QueryRow(ctx,
		`INSERT INTO products (title, description, view_image, hover_image, url, category, submenu)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		p.Title, p.Description, p.ViewImage, p.HoverImage, p.URL, p.Category, p.Submenu,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTitleTaken
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// GetByID fetches a product by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, err
}

// First returns the most recently created product.
func (r *Repository) First(ctx context.Context) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT 1`))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get first product: %w", err)
	}
	return p, err
}

// TitleExists reports whether a product with the given title already exists.
func (r *Repository) TitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE title = $1)`, title,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product title: %w", err)
	}
	return exists, nil
}

// Update writes the mutable fields of p and returns the stored record.
func (r *Repository) Update(ctx context.Context, p *Product) (*Product, error) {
	updated, err := scanProduct(r.db.QueryRow(ctx,
		`UPDATE products
		 SET title = $2, description = $3, view_image = $4, hover_image = $5,
		     url = $6, category = $7, submenu = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		p.ID, p.Title, p.Description, p.ViewImage, p.HoverImage, p.URL, p.Category, p.Submenu,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrTitleTaken
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// Delete removes a product by its UUID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
