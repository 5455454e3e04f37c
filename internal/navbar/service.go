package navbar

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rittz/backend/internal/media"
)

// repository is the persistence surface the service needs; *Repository
// implements it.
type repository interface {
	Get(ctx context.Context) (*Navbar, error)
	Upsert(ctx context.Context, n *Navbar) (*Navbar, error)
}

// Service contains business logic for navbar management.
type Service struct {
	repo    repository
	deleter *media.Deleter
	log     *slog.Logger
}

// NewService creates a new navbar Service.
func NewService(repo repository, deleter *media.Deleter, log *slog.Logger) *Service {
	return &Service{repo: repo, deleter: deleter, log: log}
}

// Get returns the navbar document.
func (s *Service) Get(ctx context.Context) (*Navbar, error) {
	return s.repo.Get(ctx)
}

// Update upserts the navbar document. When logo is non-nil the uploaded
// object becomes the new logo; the previous logo object is deleted after a
// successful write. A failed write rolls the fresh upload back so no orphan
// is left in storage.
func (s *Service) Update(ctx context.Context, input *Navbar, logo *media.StoredObject) (*Navbar, error) {
	var oldLogoURL string
	if current, err := s.repo.Get(ctx); err == nil {
		oldLogoURL = current.Logo.URL
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if logo != nil {
		input.Logo.URL = logo.URL
	}
	if input.Logo.URL == "" {
		return nil, &media.ValidationError{Reason: "logo image is required"}
	}

	updated, err := s.repo.Upsert(ctx, input)
	if err != nil {
		if logo != nil {
			s.deleter.DeleteByKey(ctx, logo.Key)
		}
		return nil, err
	}

	if logo != nil && oldLogoURL != "" && oldLogoURL != logo.URL {
		s.deleter.DeleteByURL(ctx, oldLogoURL)
	}
	return updated, nil
}

// RollbackUpload deletes an uploaded object that will not be referenced,
// because the request it belonged to failed. Safe to call with nil.
func (s *Service) RollbackUpload(ctx context.Context, obj *media.StoredObject) {
	if obj != nil {
		s.deleter.DeleteByKey(ctx, obj.Key)
	}
}
