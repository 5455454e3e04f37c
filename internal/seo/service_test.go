package seo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rittz/backend/internal/media"
)

// memStore is an in-memory stand-in for the object store; it only records
// what the deleter removes.
type memStore struct {
	deletes []string
}

func (m *memStore) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string, _ map[string]string) error {
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *memStore) Exists(context.Context, string) (bool, error) { return false, nil }

func (m *memStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }

// fakeRepo lets a test fail any write and records deletions.
type fakeRepo struct {
	existing  *Page
	createErr error
	updateErr error
	deleted   []string
}

func (f *fakeRepo) List(context.Context, ListFilter) ([]*Page, int, error) { return nil, 0, nil }

func (f *fakeRepo) GetByID(context.Context, string) (*Page, error) {
	if f.existing == nil {
		return nil, ErrNotFound
	}
	out := *f.existing
	return &out, nil
}

func (f *fakeRepo) GetBySlug(ctx context.Context, _ string) (*Page, error) {
	return f.GetByID(ctx, "")
}

func (f *fakeRepo) Create(_ context.Context, p *Page) (*Page, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *p
	out.ID = "s-1"
	return &out, nil
}

func (f *fakeRepo) Update(_ context.Context, p *Page) (*Page, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	out := *p
	return &out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestService(repo *fakeRepo, store *memStore) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, media.NewDeleter(store, "https://cdn.example.com", log), log)
}

func storedIcon(name string) *media.StoredObject {
	return &media.StoredObject{
		Key: "rittz-accessories/" + name,
		URL: "https://cdn.example.com/rittz-accessories/" + name,
	}
}

func validPage() *Page {
	return &Page{
		PageName: "Home",
		PageSlug: "home",
		Seo:      Meta{Title: "Rittz", Description: "Accessories"},
		Sitemap:  Sitemap{Loc: "https://rittz.example.com/"},
	}
}

func TestCreate(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{}, store)

	created, err := svc.Create(context.Background(), validPage(), storedIcon("icon.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/rittz-accessories/icon.png", created.Seo.Icon)
	assert.Equal(t, "active", created.Status)
	assert.Empty(t, store.deletes)
}

func TestCreate_InsertFailureRollsBackIcon(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{createErr: errors.New("connection reset")}, store)

	_, err := svc.Create(context.Background(), validPage(), storedIcon("icon.png"))
	require.Error(t, err)
	assert.Equal(t, []string{"rittz-accessories/icon.png"}, store.deletes,
		"the uploaded icon must be rolled back")
}

func TestCreate_MissingFieldsRollsBackIcon(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{}, store)

	p := validPage()
	p.PageSlug = ""
	_, err := svc.Create(context.Background(), p, storedIcon("icon.png"))
	require.Error(t, err)
	assert.True(t, media.IsValidation(err))
	assert.Equal(t, []string{"rittz-accessories/icon.png"}, store.deletes)
}

func TestUpdate_WriteFailureRollsBackIcon(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{updateErr: errors.New("connection reset")}
	repo.existing = validPage()
	repo.existing.ID = "s-1"
	repo.existing.Seo.Icon = "https://cdn.example.com/rittz-accessories/old-icon.png"
	svc := newTestService(repo, store)

	_, err := svc.Update(context.Background(), "s-1", func(*Page) {}, storedIcon("new-icon.png"))
	require.Error(t, err)
	// Only the fresh upload is rolled back; the stored icon stays referenced.
	assert.Equal(t, []string{"rittz-accessories/new-icon.png"}, store.deletes)
}

func TestUpdate_ReplacesAndDeletesOldIcon(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{}
	repo.existing = validPage()
	repo.existing.ID = "s-1"
	repo.existing.Seo.Icon = "https://cdn.example.com/rittz-accessories/old-icon.png"
	svc := newTestService(repo, store)

	updated, err := svc.Update(context.Background(), "s-1", func(*Page) {}, storedIcon("new-icon.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/rittz-accessories/new-icon.png", updated.Seo.Icon)
	assert.Equal(t, []string{"rittz-accessories/old-icon.png"}, store.deletes,
		"the replaced icon is deleted only after the write succeeds")
}

func TestUpdate_NotFoundRollsBackIcon(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{}, store)

	_, err := svc.Update(context.Background(), "missing", func(*Page) {}, storedIcon("icon.png"))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"rittz-accessories/icon.png"}, store.deletes)
}

func TestDelete_RemovesRecordAndIcon(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{}
	repo.existing = validPage()
	repo.existing.ID = "s-1"
	repo.existing.Seo.Icon = "https://cdn.example.com/rittz-accessories/icon.png"
	svc := newTestService(repo, store)

	require.NoError(t, svc.Delete(context.Background(), "s-1"))
	assert.Equal(t, []string{"s-1"}, repo.deleted)
	assert.Equal(t, []string{"rittz-accessories/icon.png"}, store.deletes)
}

func TestRemoveIcon(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{}
	repo.existing = validPage()
	repo.existing.ID = "s-1"
	repo.existing.Seo.Icon = "https://cdn.example.com/rittz-accessories/icon.png"
	svc := newTestService(repo, store)

	updated, err := svc.RemoveIcon(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Empty(t, updated.Seo.Icon)
	assert.Equal(t, []string{"rittz-accessories/icon.png"}, store.deletes)
}
