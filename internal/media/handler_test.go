package media

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(store *fakeStorage, policy Policy) *Handler {
	keys := NewKeyDeriverWith(time.Now, func(n int) int { return int(time.Now().UnixNano()) % n })
	uploader := NewUploader(store, policy, keys, "rittz-accessories", testLogger())
	deleter := NewDeleter(store, store.publicBase, testLogger())
	pipeline := NewTranscodePipeline(store, &fakeTranscoder{}, keys, "temp_uploads", testLogger())
	fetcher := NewFetcher(store, keys, time.Second, testLogger())
	return NewHandler(uploader, pipeline, fetcher, deleter, testLogger())
}

func TestHandlerUpload(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store, testPolicy())

	r := multipartRequest(t, []testFile{
		{field: "images", name: "a.png", contentType: "image/png", size: 512},
		{field: "nav_image", name: "logo.svg", contentType: "image/svg+xml", size: 256},
	}, nil)
	w := httptest.NewRecorder()

	h.Upload(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                      `json:"success"`
		Data    map[string][]StoredObject `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data["images"], 1)
	assert.Len(t, body.Data["nav_image"], 1)
	assert.Empty(t, body.Data["image"])
}

func TestHandlerUpload_ValidationFailure(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store, testPolicy())

	r := multipartRequest(t, []testFile{
		{field: "images", name: "script.sh", contentType: "text/x-shellscript", size: 128},
	}, nil)
	w := httptest.NewRecorder()

	h.Upload(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text/x-shellscript")
	assert.Equal(t, 0, store.uploadCount())
}

func TestHandlerUpload_StorageFailureRollsBackPartials(t *testing.T) {
	store := newFakeStorage()
	store.failUploadAfter = 2
	h := newTestHandler(store, testPolicy())

	r := multipartRequest(t, []testFile{
		{field: "images", name: "a.png", contentType: "image/png", size: 512},
		{field: "images", name: "b.png", contentType: "image/png", size: 512},
	}, nil)
	w := httptest.NewRecorder()

	h.Upload(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The endpoint persists no references, so the object stored before the
	// failure was deleted again.
	require.Len(t, store.deletes, 1)
	assert.True(t, strings.HasPrefix(store.deletes[0], "rittz-accessories/"))
}

func TestHandlerDeleteAsset(t *testing.T) {
	store := newFakeStorage()
	store.objects["rittz-accessories/a.png"] = []byte("x")
	h := newTestHandler(store, testPolicy())

	r := httptest.NewRequest(http.MethodDelete, "/media/assets",
		strings.NewReader(`{"url":"https://cdn.example.com/rittz-accessories/a.png"}`))
	w := httptest.NewRecorder()

	h.DeleteAsset(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":true`)
	assert.Equal(t, []string{"rittz-accessories/a.png"}, store.deletes)
}

func TestHandlerDeleteAsset_ForeignURL(t *testing.T) {
	store := newFakeStorage()
	h := newTestHandler(store, testPolicy())

	r := httptest.NewRequest(http.MethodDelete, "/media/assets",
		strings.NewReader(`{"url":"https://evil.example.net/a.png"}`))
	w := httptest.NewRecorder()

	h.DeleteAsset(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":false`)
	assert.Empty(t, store.deletes)
}
