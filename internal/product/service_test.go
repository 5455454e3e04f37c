package product

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rittz/backend/internal/media"
	"github.com/rittz/backend/internal/navbar"
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
	createErr error
	updateErr error
	existing  *Product
	taken     bool
	deleted   []string
}

func (f *fakeRepo) Create(_ context.Context, p *Product) (*Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *p
	out.ID = "p-1"
	return &out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Product, error) {
	if f.existing == nil {
		return nil, ErrNotFound
	}
	out := *f.existing
	return &out, nil
}

func (f *fakeRepo) First(ctx context.Context) (*Product, error) { return f.GetByID(ctx, "") }

func (f *fakeRepo) TitleExists(context.Context, string) (bool, error) { return f.taken, nil }

func (f *fakeRepo) Update(_ context.Context, p *Product) (*Product, error) {
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

// fakeMenu serves a navbar with one "Watches" category holding a "Classic"
// submenu.
type fakeMenu struct{}

func (fakeMenu) Get(context.Context) (*navbar.Navbar, error) {
	return &navbar.Navbar{MenuItems: []navbar.MenuItem{{
		Title:    "Watches",
		SubItems: []navbar.SubItem{{Title: "Classic"}},
	}}}, nil
}

func newTestService(repo *fakeRepo, store *memStore) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, fakeMenu{}, media.NewDeleter(store, "https://cdn.example.com", log), log)
}

func storedImage(name string) *media.StoredObject {
	return &media.StoredObject{
		Key: "rittz-accessories/" + name,
		URL: "https://cdn.example.com/rittz-accessories/" + name,
	}
}

func validInput() Input {
	return Input{Title: "Chrono", Description: "steel", CategoryTitle: "Watches", SubmenuTitle: "Classic"}
}

func TestCreate(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{}, store)

	created, err := svc.Create(context.Background(), validInput(), storedImage("view.png"), storedImage("hover.png"))
	require.NoError(t, err)
	assert.Equal(t, "Watches", created.Category)
	assert.Equal(t, "Classic", created.Submenu)
	assert.Empty(t, store.deletes, "a successful create must not touch storage")
}

func TestCreate_InsertFailureRollsBackImages(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{createErr: errors.New("connection reset")}, store)

	_, err := svc.Create(context.Background(), validInput(), storedImage("view.png"), storedImage("hover.png"))
	require.Error(t, err)
	assert.ElementsMatch(t,
		[]string{"rittz-accessories/view.png", "rittz-accessories/hover.png"},
		store.deletes, "both uploaded images must be rolled back")
}

func TestCreate_TitleTakenRollsBackImages(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{taken: true}, store)

	_, err := svc.Create(context.Background(), validInput(), storedImage("view.png"), storedImage("hover.png"))
	require.ErrorIs(t, err, ErrTitleTaken)
	assert.Len(t, store.deletes, 2)
}

func TestCreate_UnknownCategoryRollsBackImages(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{}, store)

	in := validInput()
	in.CategoryTitle = "Bracelets"
	_, err := svc.Create(context.Background(), in, storedImage("view.png"), storedImage("hover.png"))
	require.Error(t, err)
	assert.True(t, media.IsValidation(err))
	assert.Len(t, store.deletes, 2)
}

func TestCreate_MissingImage(t *testing.T) {
	store := &memStore{}
	svc := newTestService(&fakeRepo{}, store)

	_, err := svc.Create(context.Background(), validInput(), storedImage("view.png"), nil)
	require.Error(t, err)
	assert.True(t, media.IsValidation(err))
}

func TestUpdate_WriteFailureRollsBackFreshUploads(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{
		updateErr: errors.New("connection reset"),
		existing: &Product{
			ID:         "p-1",
			Title:      "Chrono",
			ViewImage:  "https://cdn.example.com/rittz-accessories/old-view.png",
			HoverImage: "https://cdn.example.com/rittz-accessories/old-hover.png",
		},
	}
	svc := newTestService(repo, store)

	_, err := svc.Update(context.Background(), "p-1", Input{Description: "gold"}, storedImage("new-view.png"), nil)
	require.Error(t, err)
	// Only the fresh upload is rolled back; the stored images stay referenced.
	assert.Equal(t, []string{"rittz-accessories/new-view.png"}, store.deletes)
}

func TestUpdate_ReplacesAndDeletesOldImages(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{existing: &Product{
		ID:         "p-1",
		Title:      "Chrono",
		ViewImage:  "https://cdn.example.com/rittz-accessories/old-view.png",
		HoverImage: "https://cdn.example.com/rittz-accessories/old-hover.png",
	}}
	svc := newTestService(repo, store)

	updated, err := svc.Update(context.Background(), "p-1", Input{}, storedImage("new-view.png"), storedImage("new-hover.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/rittz-accessories/new-view.png", updated.ViewImage)
	assert.ElementsMatch(t,
		[]string{"rittz-accessories/old-view.png", "rittz-accessories/old-hover.png"},
		store.deletes, "replaced images are deleted only after the write succeeds")
}

func TestDelete_RemovesRecordAndImages(t *testing.T) {
	store := &memStore{}
	repo := &fakeRepo{existing: &Product{
		ID:        "p-1",
		ViewImage: "https://cdn.example.com/rittz-accessories/view.png",
	}}
	svc := newTestService(repo, store)

	require.NoError(t, svc.Delete(context.Background(), "p-1"))
	assert.Equal(t, []string{"p-1"}, repo.deleted)
	assert.Equal(t, []string{"rittz-accessories/view.png"}, store.deletes)
}
