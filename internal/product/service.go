package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rittz/backend/internal/media"
	"github.com/rittz/backend/internal/navbar"
)

// Input carries the product fields sent by the catalog editor. Category and
// submenu are referenced by their navbar titles.
type Input struct {
	Title         string
	Description   string
	URL           string
	CategoryTitle string
	SubmenuTitle  string
}

// repository is the persistence surface the service needs; *Repository
// implements it.
type repository interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	First(ctx context.Context) (*Product, error)
	TitleExists(ctx context.Context, title string) (bool, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// menuSource resolves category/submenu titles; *navbar.Service implements it.
type menuSource interface {
	Get(ctx context.Context) (*navbar.Navbar, error)
}

// Service contains business logic for catalog management.
type Service struct {
	repo    repository
	menu    menuSource
	deleter *media.Deleter
	log     *slog.Logger
}

// NewService creates a new product Service.
func NewService(repo repository, menu menuSource, deleter *media.Deleter, log *slog.Logger) *Service {
	return &Service{repo: repo, menu: menu, deleter: deleter, log: log}
}

// Create adds a catalog entry. Both images must already be uploaded; if the
// database write fails they are rolled back so no orphan objects remain.
func (s *Service) Create(ctx context.Context, in Input, view, hover *media.StoredObject) (*Product, error) {
	if view == nil || hover == nil {
		return nil, &media.ValidationError{Reason: "both images are required"}
	}

	rollback := func() {
		s.deleter.DeleteByKey(ctx, view.Key)
		s.deleter.DeleteByKey(ctx, hover.Key)
	}

	category, submenu, err := s.resolveMenu(ctx, in.CategoryTitle, in.SubmenuTitle)
	if err != nil {
		rollback()
		return nil, err
	}

	taken, err := s.repo.TitleExists(ctx, in.Title)
	if err != nil {
		rollback()
		return nil, err
	}
	if taken {
		rollback()
		return nil, ErrTitleTaken
	}

	created, err := s.repo.Create(ctx, &Product{
		Title:       in.Title,
		Description: in.Description,
		ViewImage:   view.URL,
		HoverImage:  hover.URL,
		URL:         in.URL,
		Category:    category,
		Submenu:     submenu,
	})
	if err != nil {
		rollback()
		return nil, err
	}
	return created, nil
}

// Update modifies a catalog entry. New images, when provided, replace the
// stored ones; replaced objects are deleted after a successful write, and
// fresh uploads are rolled back on failure.
func (s *Service) Update(ctx context.Context, id string, in Input, view, hover *media.StoredObject) (*Product, error) {
	rollback := func() {
		if view != nil {
			s.deleter.DeleteByKey(ctx, view.Key)
		}
		if hover != nil {
			s.deleter.DeleteByKey(ctx, hover.Key)
		}
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		rollback()
		return nil, err
	}

	oldView, oldHover := existing.ViewImage, existing.HoverImage

	if in.Title != "" {
		existing.Title = in.Title
	}
	if in.Description != "" {
		existing.Description = in.Description
	}
	if in.URL != "" {
		existing.URL = in.URL
	}
	if in.CategoryTitle != "" || in.SubmenuTitle != "" {
		category, submenu, err := s.resolveMenu(ctx, in.CategoryTitle, in.SubmenuTitle)
		if err != nil {
			rollback()
			return nil, err
		}
		existing.Category = category
		existing.Submenu = submenu
	}
	if view != nil {
		existing.ViewImage = view.URL
	}
	if hover != nil {
		existing.HoverImage = hover.URL
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		rollback()
		return nil, err
	}

	if view != nil && oldView != "" {
		s.deleter.DeleteByURL(ctx, oldView)
	}
	if hover != nil && oldHover != "" {
		s.deleter.DeleteByURL(ctx, oldHover)
	}
	return updated, nil
}

// Delete removes a catalog entry and its stored images.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if p.ViewImage != "" {
		s.deleter.DeleteByURL(ctx, p.ViewImage)
	}
	if p.HoverImage != "" {
		s.deleter.DeleteByURL(ctx, p.HoverImage)
	}
	return nil
}

// Get returns the most recently created product.
func (s *Service) Get(ctx context.Context) (*Product, error) {
	return s.repo.First(ctx)
}

// resolveMenu checks that the named category and submenu exist in the navbar
// document and returns their canonical titles.
func (s *Service) resolveMenu(ctx context.Context, categoryTitle, submenuTitle string) (string, string, error) {
	nb, err := s.menu.Get(ctx)
	if err != nil {
		if errors.Is(err, navbar.ErrNotFound) {
			return "", "", &media.ValidationError{Reason: "category not found"}
		}
		return "", "", fmt.Errorf("load navbar: %w", err)
	}

	for _, item := range nb.MenuItems {
		if item.Title != categoryTitle {
			continue
		}
		for _, sub := range item.SubItems {
			if sub.Title == submenuTitle {
				return item.Title, sub.Title, nil
			}
		}
		return "", "", &media.ValidationError{Reason: "submenu not found in this category"}
	}
	return "", "", &media.ValidationError{Reason: "category not found"}
}
