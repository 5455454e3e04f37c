package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rittz/backend/internal/storage"
)

// fetchUserAgent identifies our outbound media fetches.
const fetchUserAgent = "Mozilla/5.0 (compatible; MediaFetcher/1.0)"

// fetchKeyPrefix is where republished remote media lands.
const fetchKeyPrefix = "uploads"

// Fetcher downloads a remote media resource and republishes it into object
// storage. A single attempt, bounded by the client timeout — transient
// failures surface directly to the caller.
type Fetcher struct {
	store  storage.Storage
	client *http.Client
	keys   *KeyDeriver
	log    *slog.Logger
}

// NewFetcher wires a Fetcher with the given request timeout.
func NewFetcher(store storage.Storage, keys *KeyDeriver, timeout time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{
		store:  store,
		client: &http.Client{Timeout: timeout},
		keys:   keys,
		log:    log,
	}
}

// FetchAndStore downloads the video at remoteURL into memory and uploads it
// under a generated key, returning the public URL.
func (f *Fetcher) FetchAndStore(ctx context.Context, remoteURL string) (string, error) {
	if remoteURL == "" {
		return "", &ValidationError{Reason: "media URL is required"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", &ValidationError{Reason: fmt.Sprintf("invalid media URL: %v", err)}
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	f.log.Info("downloading remote media", "url", remoteURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: remoteURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{URL: remoteURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: remoteURL, Err: err}
	}
	if len(body) == 0 {
		return "", &NetworkError{URL: remoteURL, Err: fmt.Errorf("downloaded media is empty")}
	}

	key := f.keys.DeriveFlat(fetchKeyPrefix, "fetched", ".mp4")
	meta := map[string]string{
		"source":      "remote-fetch",
		"upload-date": time.Now().UTC().Format(time.RFC3339),
	}
	if err := f.store.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "video/mp4", meta); err != nil {
		return "", &StorageError{Key: key, Err: err}
	}

	url := f.store.PublicURL(key)
	f.log.Info("remote media republished", "key", key, "size", len(body))
	return url, nil
}
