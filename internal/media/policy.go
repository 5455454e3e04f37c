// Package media implements the upload, transcode, remote-fetch, and deletion
// pipelines around S3-compatible object storage.
package media

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Policy is the read-only configuration governing which uploads are
// accepted. Built once at startup and shared across requests.
type Policy struct {
	AllowedTypes      map[string]bool
	AllowedExtensions map[string]bool
	MaxFileSize       int64
	MaxFileCount      int
	MaxTotalSize      int64
}

// DefaultPolicy returns the policy used for catalog and content uploads.
// application/octet-stream is allowed because some browsers send it for
// spreadsheet and PDF uploads; the extension fallback covers the rest.
func DefaultPolicy(maxFileSize int64, maxFileCount int, maxTotalSize int64) Policy {
	return Policy{
		AllowedTypes: map[string]bool{
			"image/jpg":     true,
			"image/jpeg":    true,
			"image/png":     true,
			"image/webp":    true,
			"image/avif":    true,
			"image/svg":     true,
			"image/svg+xml": true,
			"video/mp4":     true,
			"video/webm":    true,
			"video/ogg":     true,
			"application/json":         true,
			"application/octet-stream": true,
			"application/pdf":          true,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
			"application/vnd.ms-excel": true,
		},
		AllowedExtensions: map[string]bool{
			".xlsx": true,
			".xls":  true,
			".pdf":  true,
		},
		MaxFileSize:  maxFileSize,
		MaxFileCount: maxFileCount,
		MaxTotalSize: maxTotalSize,
	}
}

// FileInfo is the slice of an upload the validator needs.
type FileInfo struct {
	Name     string
	MimeType string
	Size     int64
}

// ValidateFile accepts a file when its MIME type is allow-listed or its
// extension is, and its size is within the per-file limit. Pure decision
// function; no side effects.
func (p Policy) ValidateFile(f FileInfo) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !p.AllowedTypes[f.MimeType] && !p.AllowedExtensions[ext] {
		return &ValidationError{Reason: fmt.Sprintf(
			"only JPG, JPEG, PNG, WEBP, Excel files (.xlsx, .xls), PDF and videos are allowed. Received: %s", f.MimeType)}
	}
	if p.MaxFileSize > 0 && f.Size > p.MaxFileSize {
		return &ValidationError{Reason: fmt.Sprintf(
			"file %q exceeds the %dMB limit", f.Name, p.MaxFileSize>>20)}
	}
	return nil
}

// ValidateBatch checks every file plus the count and aggregate-size limits.
// Runs entirely in memory so a doomed batch is rejected before any object
// store call is issued.
func (p Policy) ValidateBatch(files []FileInfo) error {
	if p.MaxFileCount > 0 && len(files) > p.MaxFileCount {
		return &ValidationError{Reason: fmt.Sprintf(
			"too many files: %d (limit %d)", len(files), p.MaxFileCount)}
	}
	var total int64
	for _, f := range files {
		if err := p.ValidateFile(f); err != nil {
			return err
		}
		total += f.Size
	}
	if p.MaxTotalSize > 0 && total > p.MaxTotalSize {
		return &ValidationError{Reason: fmt.Sprintf(
			"combined upload size exceeds the %dMB limit", p.MaxTotalSize>>20)}
	}
	return nil
}
