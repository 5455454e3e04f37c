package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return DefaultPolicy(50<<20, 21, 200<<20)
}

func TestValidateFile_AllowedTypes(t *testing.T) {
	p := testPolicy()

	for _, mime := range []string{
		"image/jpeg", "image/png", "image/webp", "image/avif", "image/svg+xml",
		"video/mp4", "video/webm", "video/ogg", "application/pdf", "application/json",
	} {
		assert.NoError(t, p.ValidateFile(FileInfo{Name: "asset", MimeType: mime, Size: 1024}), mime)
	}
}

func TestValidateFile_ExtensionFallback(t *testing.T) {
	p := testPolicy()

	// Some clients send a generic MIME type for spreadsheet/PDF uploads;
	// the extension rescues them.
	for _, name := range []string{"report.xlsx", "legacy.XLS", "manual.pdf"} {
		assert.NoError(t, p.ValidateFile(FileInfo{Name: name, MimeType: "binary/weird", Size: 1024}), name)
	}
}

func TestValidateFile_RejectNamesReceivedType(t *testing.T) {
	p := testPolicy()

	err := p.ValidateFile(FileInfo{Name: "malware.exe", MimeType: "application/x-msdownload", Size: 1024})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "application/x-msdownload")
}

func TestValidateFile_SizeLimit(t *testing.T) {
	p := testPolicy()

	// 60MB against a 50MB per-file limit.
	err := p.ValidateFile(FileInfo{Name: "big.png", MimeType: "image/png", Size: 60 << 20})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	assert.NoError(t, p.ValidateFile(FileInfo{Name: "ok.png", MimeType: "image/png", Size: 50 << 20}))
}

func TestValidateBatch_CountLimit(t *testing.T) {
	p := testPolicy()

	files := make([]FileInfo, 22)
	for i := range files {
		files[i] = FileInfo{Name: "a.png", MimeType: "image/png", Size: 1024}
	}
	err := p.ValidateBatch(files)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	assert.NoError(t, p.ValidateBatch(files[:21]))
}

func TestValidateBatch_AggregateLimit(t *testing.T) {
	p := testPolicy()

	// Five files of 45MB each pass individually but exceed 200MB combined.
	files := make([]FileInfo, 5)
	for i := range files {
		files[i] = FileInfo{Name: "a.png", MimeType: "image/png", Size: 45 << 20}
	}
	err := p.ValidateBatch(files)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidateBatch_RejectsOnFirstBadFile(t *testing.T) {
	p := testPolicy()

	err := p.ValidateBatch([]FileInfo{
		{Name: "ok.png", MimeType: "image/png", Size: 1024},
		{Name: "bad.exe", MimeType: "application/x-msdownload", Size: 1024},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
