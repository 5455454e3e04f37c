// Package navbar manages the site's single navbar/menu document.
package navbar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubItem is one entry under a menu category.
type SubItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// MenuItem is a top-level menu category.
type MenuItem struct {
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	IsVisible bool      `json:"isVisible"`
	SubItems  []SubItem `json:"subItems"`
}

// Logo is the site logo reference stored on the navbar.
type Logo struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// CompanyDetail holds the branding block rendered next to the logo.
type CompanyDetail struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline,omitempty"`
	FoundYear int    `json:"foundYear,omitempty"`
}

// Navbar is the single navbar document.
type Navbar struct {
	Logo          Logo          `json:"logo"`
	CompanyDetail CompanyDetail `json:"companyDetail"`
	MenuItems     []MenuItem    `json:"menuItems"`
	UpdatedAt     time.Time     `json:"updatedAt,omitempty"`
}

// ErrNotFound is returned when no navbar document has been created yet.
var ErrNotFound = errors.New("navbar not found")

// Repository persists the navbar document as a single JSONB row.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get returns the navbar document.
func (r *Repository) Get(ctx context.Context) (*Navbar, error) {
	var doc []byte
	var updatedAt time.Time
	err := r.db.QueryRow(ctx,
		`SELECT document, updated_at FROM navbar WHERE id = 1`,
	).Scan(&doc, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get navbar: %w", err)
	}

	n := &Navbar{}
	if err := json.Unmarshal(doc, n); err != nil {
		return nil, fmt.Errorf("decode navbar document: %w", err)
	}
	n.UpdatedAt = updatedAt
	return n, nil
}

// Upsert writes the navbar document, creating the row on first use.
func (r *Repository) Upsert(ctx context.Context, n *Navbar) (*Navbar, error) {
	doc, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode navbar document: %w", err)
	}

	var updatedAt time.Time
	err = r.db.QueryRow(ctx,
		`INSERT INTO navbar (id, document) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
		 RETURNING updated_at`,
		doc,
	).Scan(&updatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert navbar: %w", err)
	}

	n.UpdatedAt = updatedAt
	return n, nil
}
