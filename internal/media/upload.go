package media

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rittz/backend/internal/storage"
)

// maxParseMemory bounds how much of a multipart body is held in memory
// during parsing; the remainder spills to disk via net/http.
const maxParseMemory = 32 << 20

// StoredObject describes one successfully uploaded file.
type StoredObject struct {
	URL          string `json:"url"`
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
}

// FieldSpec names a multipart field and caps how many files it may carry.
// MaxCount <= 0 means unlimited (within the policy's batch limits).
type FieldSpec struct {
	Name     string
	MaxCount int
}

// Uploader streams validated multipart uploads to object storage.
type Uploader struct {
	store  storage.Storage
	policy Policy
	keys   *KeyDeriver
	prefix string
	log    *slog.Logger
}

// NewUploader wires an Uploader. policy and the storage handle are shared
// read-only across requests.
func NewUploader(store storage.Storage, policy Policy, keys *KeyDeriver, prefix string, log *slog.Logger) *Uploader {
	return &Uploader{store: store, policy: policy, keys: keys, prefix: prefix, log: log}
}

// HandleRequest parses the request's multipart body against fields, validates
// every file in memory, and only then streams the accepted files to storage
// in field order. A validation failure rejects the whole request before any
// object store call.
//
// On a storage failure mid-batch the remaining uploads are aborted; the
// returned map still holds the objects stored before the failure so the
// caller can reconcile them through the Deleter.
func (u *Uploader) HandleRequest(r *http.Request, fields []FieldSpec) (map[string][]StoredObject, error) {
	if err := r.ParseMultipartForm(maxParseMemory); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid multipart body: %v", err)}
	}
	if r.MultipartForm == nil {
		return nil, &ValidationError{Reason: "multipart form data required"}
	}

	// Collect and validate everything before touching the network.
	var all []FileInfo
	byField := make(map[string][]*multipart.FileHeader, len(fields))
	for _, spec := range fields {
		headers := r.MultipartForm.File[spec.Name]
		if spec.MaxCount > 0 && len(headers) > spec.MaxCount {
			return nil, &ValidationError{Reason: fmt.Sprintf(
				"field %q accepts at most %d file(s), got %d", spec.Name, spec.MaxCount, len(headers))}
		}
		byField[spec.Name] = headers
		for _, fh := range headers {
			all = append(all, FileInfo{
				Name:     fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Size:     fh.Size,
			})
		}
	}
	if err := u.policy.ValidateBatch(all); err != nil {
		return nil, err
	}

	results := make(map[string][]StoredObject, len(fields))
	for _, spec := range fields {
		results[spec.Name] = []StoredObject{}
		for _, fh := range byField[spec.Name] {
			obj, err := u.uploadOne(r, fh)
			if err != nil {
				return results, err
			}
			results[spec.Name] = append(results[spec.Name], obj)
		}
	}
	return results, nil
}

func (u *Uploader) uploadOne(r *http.Request, fh *multipart.FileHeader) (StoredObject, error) {
	f, err := fh.Open()
	if err != nil {
		return StoredObject{}, &ValidationError{Reason: fmt.Sprintf("open uploaded file %q: %v", fh.Filename, err)}
	}
	defer f.Close()

	key := u.keys.Derive(u.prefix, fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	meta := map[string]string{
		"original-name": fh.Filename,
		"upload-date":   time.Now().UTC().Format(time.RFC3339),
	}

	if err := u.store.Upload(r.Context(), key, f, fh.Size, contentType, meta); err != nil {
		return StoredObject{}, &StorageError{Key: key, Err: err}
	}

	u.log.Info("uploaded object", "key", key, "size", fh.Size, "contentType", contentType)
	return StoredObject{
		URL:          u.store.PublicURL(key),
		Key:          key,
		OriginalName: fh.Filename,
		Size:         fh.Size,
		ContentType:  contentType,
	}, nil
}

// Single uploads exactly one file from the named field and returns it, or
// nil when the field is absent. Convenience wrapper for handlers that take
// an optional single image.
func (u *Uploader) Single(r *http.Request, field string) (*StoredObject, error) {
	results, err := u.HandleRequest(r, []FieldSpec{{Name: field, MaxCount: 1}})
	if err != nil {
		return nil, err
	}
	if objs := results[field]; len(objs) > 0 {
		return &objs[0], nil
	}
	return nil, nil
}
