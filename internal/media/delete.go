package media

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/rittz/backend/internal/storage"
)

// Deleter removes stored objects by key or by public URL. Used for explicit
// asset removal and for rolling back uploads whose database write failed.
type Deleter struct {
	store      storage.Storage
	publicBase string
	log        *slog.Logger
}

// NewDeleter wires a Deleter. publicBase is the configured public base URL;
// DeleteByURL refuses anything outside it.
func NewDeleter(store storage.Storage, publicBase string, log *slog.Logger) *Deleter {
	return &Deleter{store: store, publicBase: strings.TrimRight(publicBase, "/"), log: log}
}

// DeleteByKey removes the object at key and reports success. Deleting an
// already-absent key succeeds — callers use this for rollback and must not
// abort on a missing object.
func (d *Deleter) DeleteByKey(ctx context.Context, key string) bool {
	if key == "" {
		d.log.Warn("delete skipped: empty key")
		return false
	}
	if err := d.store.Delete(ctx, key); err != nil {
		d.log.Error("failed to delete object", "key", key, "error", err)
		return false
	}
	d.log.Info("deleted object", "key", key)
	return true
}

// DeleteByURL reverse-maps a public URL to its storage key and deletes it.
// Fails closed — no network call is made — for an empty URL, a non-HTTPS
// URL, or a URL outside the configured public base, so a malformed or
// spoofed URL can never delete third-party resources.
func (d *Deleter) DeleteByURL(ctx context.Context, fileURL string) bool {
	if fileURL == "" {
		d.log.Warn("delete skipped: empty file URL")
		return false
	}
	if !strings.HasPrefix(fileURL, "https://") {
		d.log.Warn("delete skipped: not a secure URL", "url", fileURL)
		return false
	}
	if !strings.HasPrefix(fileURL, d.publicBase+"/") {
		d.log.Warn("delete skipped: URL outside public base", "url", fileURL)
		return false
	}

	rest := strings.TrimPrefix(fileURL, d.publicBase+"/")
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		d.log.Warn("delete skipped: undecodable URL path", "url", fileURL, "error", err)
		return false
	}
	return d.DeleteByKey(ctx, key)
}
