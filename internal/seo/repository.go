// Package seo manages per-page SEO metadata documents.
package seo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MetaProperty is one Open Graph meta tag.
type MetaProperty struct {
	Property string `json:"property"`
	Content  string `json:"content"`
}

// MetaName is one Twitter meta tag.
type MetaName struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SiteVerification is the Google site-verification meta tag.
type SiteVerification struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
}

// Meta is the head-metadata block of a page.
type Meta struct {
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	Canonical              string           `json:"canonical,omitempty"`
	Icon                   string           `json:"icon,omitempty"`
	GoogleSiteVerification SiteVerification `json:"googleSiteVerification"`
	MetaPropertyOg         []MetaProperty   `json:"metaPropertyOg"`
	MetaNameTwitter        []MetaName       `json:"metaNameTwitter"`
}

// TagManager holds the Google Tag Manager snippets.
type TagManager struct {
	Header string `json:"header,omitempty"`
	Body   string `json:"body,omitempty"`
}

// Sitemap is the page's sitemap entry.
type Sitemap struct {
	Loc        string    `json:"loc"`
	Lastmod    time.Time `json:"lastmod"`
	Priority   float64   `json:"priority"`
	Changefreq string    `json:"changefreq"`
}

// Page is one managed SEO page.
type Page struct {
	ID               string     `json:"id"`
	PageName         string     `json:"pageName"`
	PageSlug         string     `json:"pageSlug"`
	Seo              Meta       `json:"seo"`
	GoogleTagManager TagManager `json:"googleTagManager"`
	Sitemap          Sitemap    `json:"sitemap"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// document is the JSONB payload stored per page; identity and filter columns
// live beside it.
type document struct {
	Seo              Meta       `json:"seo"`
	GoogleTagManager TagManager `json:"googleTagManager"`
	Sitemap          Sitemap    `json:"sitemap"`
}

// ErrNotFound is returned when an SEO page does not exist.
var ErrNotFound = errors.New("SEO page not found")

// ErrSlugTaken is returned when a page slug is already in use.
var ErrSlugTaken = errors.New("page slug already exists")

// ListFilter narrows and paginates List results.
type ListFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// Repository handles all SEO page database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanPage(row pgx.Row) (*Page, error) {
	p := &Page{}
	var doc []byte
	err := row.Scan(&p.ID, &p.PageName, &p.PageSlug, &p.Status, &doc, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("decode seo document: %w", err)
	}
	p.Seo = d.Seo
	p.GoogleTagManager = d.GoogleTagManager
	p.Sitemap = d.Sitemap
	return p, nil
}

const pageColumns = `id, page_name, page_slug, status, document, created_at, updated_at`

// List returns a page window of SEO pages matching the filter, newest first,
// together with the total match count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Page, int, error) {
	where := "TRUE"
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := fmt.Sprintf("$%d", len(args))
		where += fmt.Sprintf(` AND (page_name ILIKE %s OR page_slug ILIKE %s OR document->'seo'->>'title' ILIKE %s)`, n, n, n)
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM seo_pages WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count seo pages: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM seo_pages WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			pageColumns, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list seo pages: %w", err)
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list seo pages: %w", err)
	}
	return pages, total, nil
}

// GetByID fetches an SEO page by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Page, error) {
	p, err := scanPage(r.db.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM seo_pages WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get seo page by id: %w", err)
	}
	return p, err
}

// GetBySlug fetches an active SEO page by its slug. Used by the public site.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	p, err := scanPage(r.db.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM seo_pages WHERE page_slug = $1 AND status = 'active'`, slug))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get seo page by slug: %w", err)
	}
	return p, err
}

// Create inserts a new SEO page and returns the created record.
func (r *Repository) Create(ctx context.Context, p *Page) (*Page, error) {
	doc, err := json.Marshal(document{Seo: p.Seo, GoogleTagManager: p.GoogleTagManager, Sitemap: p.Sitemap})
	if err != nil {
		return nil, fmt.Errorf("encode seo document: %w", err)
	}

	created, err := scanPage(r.db.QueryRow(ctx,
		`INSERT INTO seo_pages (page_name, page_slug, status, document)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+pageColumns,
		p.PageName, p.PageSlug, p.Status, doc,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create seo page: %w", err)
	}
	return created, nil
}

// Update writes the full state of p and returns the stored record.
func (r *Repository) Update(ctx context.Context, p *Page) (*Page, error) {
	doc, err := json.Marshal(document{Seo: p.Seo, GoogleTagManager: p.GoogleTagManager, Sitemap: p.Sitemap})
	if err != nil {
		return nil, fmt.Errorf("encode seo document: %w", err)
	}

	updated, err := scanPage(r.db.QueryRow(ctx,
		`UPDATE seo_pages
		 SET page_name = $2, page_slug = $3, status = $4, document = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING `+pageColumns,
		p.ID, p.PageName, p.PageSlug, p.Status, doc,
	))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("update seo page: %w", err)
	}
	return updated, nil
}

// Delete removes an SEO page by its UUID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM seo_pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete seo page: %w", err)
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
