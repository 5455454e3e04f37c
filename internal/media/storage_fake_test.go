package media

import (
	"context"
	"errors"
	"io"
	"sync"
)

// fakeStorage is an in-memory storage.Storage for pipeline tests.
type fakeStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	contentTyp map[string]string
	metadata   map[string]map[string]string
	publicBase string

	failUploadAfter int // fail the Nth upload (1-based); 0 = never
	failDelete      bool
	uploads         int
	deletes         []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects:    make(map[string][]byte),
		contentTyp: make(map[string]string),
		metadata:   make(map[string]map[string]string),
		publicBase: "https://cdn.example.com",
	}
}

func (f *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.failUploadAfter > 0 && f.uploads >= f.failUploadAfter {
		return errors.New("simulated upload failure")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.contentTyp[key] = contentType
	f.metadata[key] = metadata
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("simulated delete failure")
	}
	f.deletes = append(f.deletes, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return f.publicBase + "/" + key
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}
