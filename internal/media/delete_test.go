package media

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDeleter(store *fakeStorage) *Deleter {
	return NewDeleter(store, "https://cdn.example.com", testLogger())
}

func TestDeleteByKey(t *testing.T) {
	store := newFakeStorage()
	store.objects["rittz-accessories/a.png"] = []byte("x")
	d := newTestDeleter(store)

	assert.True(t, d.DeleteByKey(context.Background(), "rittz-accessories/a.png"))
	assert.Equal(t, []string{"rittz-accessories/a.png"}, store.deletes)
}

func TestDeleteByKey_EmptyKey(t *testing.T) {
	store := newFakeStorage()
	d := newTestDeleter(store)

	assert.False(t, d.DeleteByKey(context.Background(), ""))
	assert.Empty(t, store.deletes)
}

func TestDeleteByKey_AbsentKeyIsNotAnError(t *testing.T) {
	store := newFakeStorage()
	d := newTestDeleter(store)

	// Idempotent: rollback paths call this without knowing whether the
	// object still exists.
	assert.True(t, d.DeleteByKey(context.Background(), "rittz-accessories/gone.png"))
}

func TestDeleteByKey_StorageError(t *testing.T) {
	store := newFakeStorage()
	store.failDelete = true
	d := newTestDeleter(store)

	assert.False(t, d.DeleteByKey(context.Background(), "rittz-accessories/a.png"))
}

func TestDeleteByURL_FailsClosed(t *testing.T) {
	store := newFakeStorage()
	d := newTestDeleter(store)

	cases := map[string]string{
		"empty":             "",
		"insecure scheme":   "http://cdn.example.com/rittz-accessories/a.png",
		"not a URL":         "definitely not a url",
		"foreign host":      "https://evil.example.net/rittz-accessories/a.png",
		"base as substring": "https://evil.example.net/?x=https://cdn.example.com/a.png",
	}
	for name, url := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, d.DeleteByURL(context.Background(), url))
			assert.Empty(t, store.deletes, "no delete call may be issued")
		})
	}
}

func TestDeleteByURL_ExtractsAndDecodesKey(t *testing.T) {
	store := newFakeStorage()
	d := newTestDeleter(store)

	ok := d.DeleteByURL(context.Background(), "https://cdn.example.com/rittz-accessories/1700000000000_42_my%20photo.png")
	assert.True(t, ok)
	assert.Equal(t, []string{"rittz-accessories/1700000000000_42_my photo.png"}, store.deletes)
}

func TestDeleteByURL_StripsQuery(t *testing.T) {
	store := newFakeStorage()
	d := newTestDeleter(store)

	ok := d.DeleteByURL(context.Background(), "https://cdn.example.com/rittz-accessories/a.png?v=2")
	assert.True(t, ok)
	assert.Equal(t, []string{"rittz-accessories/a.png"}, store.deletes)
}
