package seo

import (
	"context"
	"log/slog"
	"time"

	"github.com/rittz/backend/internal/media"
)

// repository is the persistence surface the service needs; *Repository
// implements it.
type repository interface {
	List(ctx context.Context, f ListFilter) ([]*Page, int, error)
	GetByID(ctx context.Context, id string) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	Create(ctx context.Context, p *Page) (*Page, error)
	Update(ctx context.Context, p *Page) (*Page, error)
	Delete(ctx context.Context, id string) error
}

// Service contains business logic for SEO page management.
type Service struct {
	repo    repository
	deleter *media.Deleter
	log     *slog.Logger
}

// NewService creates a new SEO Service.
func NewService(repo repository, deleter *media.Deleter, log *slog.Logger) *Service {
	return &Service{repo: repo, deleter: deleter, log: log}
}

// List returns a filtered page window and the total match count.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Page, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	return s.repo.List(ctx, f)
}

// GetByID returns an SEO page by its UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug returns an active SEO page by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Create stores a new SEO page. When icon is non-nil its URL becomes the
// page icon; if the database write fails the uploaded icon is rolled back.
func (s *Service) Create(ctx context.Context, p *Page, icon *media.StoredObject) (*Page, error) {
	if p.PageName == "" || p.PageSlug == "" || p.Seo.Title == "" || p.Seo.Description == "" || p.Sitemap.Loc == "" {
		s.RollbackUpload(ctx, icon)
		return nil, &media.ValidationError{Reason: "page name, slug, SEO title, description and sitemap location are required"}
	}

	applyDefaults(p)
	if icon != nil {
		p.Seo.Icon = icon.URL
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.RollbackUpload(ctx, icon)
		return nil, err
	}
	return created, nil
}

// Update applies in to the stored page. A new icon replaces the old one,
// which is deleted from storage after a successful write; the fresh upload
// is rolled back on failure.
func (s *Service) Update(ctx context.Context, id string, apply func(*Page), icon *media.StoredObject) (*Page, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.RollbackUpload(ctx, icon)
		return nil, err
	}

	oldIcon := existing.Seo.Icon
	apply(existing)
	if icon != nil {
		existing.Seo.Icon = icon.URL
	}
	existing.Sitemap.Lastmod = time.Now().UTC()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		s.RollbackUpload(ctx, icon)
		return nil, err
	}

	if icon != nil && oldIcon != "" {
		s.deleter.DeleteByURL(ctx, oldIcon)
	}
	return updated, nil
}

// Delete removes an SEO page and its stored icon.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Seo.Icon != "" {
		s.deleter.DeleteByURL(ctx, p.Seo.Icon)
	}
	return s.repo.Delete(ctx, id)
}

// RemoveIcon deletes the page's icon object and clears the reference.
func (s *Service) RemoveIcon(ctx context.Context, id string) (*Page, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Seo.Icon != "" {
		s.deleter.DeleteByURL(ctx, p.Seo.Icon)
	}
	p.Seo.Icon = ""
	return s.repo.Update(ctx, p)
}

// RollbackUpload deletes an uploaded object that will not be referenced,
// because the write it belonged to failed. Safe to call with nil.
func (s *Service) RollbackUpload(ctx context.Context, obj *media.StoredObject) {
	if obj != nil {
		s.deleter.DeleteByKey(ctx, obj.Key)
	}
}

func applyDefaults(p *Page) {
	if p.Status == "" {
		p.Status = "active"
	}
	if p.Sitemap.Priority == 0 {
		p.Sitemap.Priority = 0.5
	}
	if p.Sitemap.Changefreq == "" {
		p.Sitemap.Changefreq = "monthly"
	}
	if p.Sitemap.Lastmod.IsZero() {
		p.Sitemap.Lastmod = time.Now().UTC()
	}
	if p.Seo.MetaPropertyOg == nil {
		p.Seo.MetaPropertyOg = []MetaProperty{}
	}
	if p.Seo.MetaNameTwitter == nil {
		p.Seo.MetaNameTwitter = []MetaName{}
	}
}
