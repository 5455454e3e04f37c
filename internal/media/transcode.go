package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rittz/backend/internal/storage"
)

// videoKeyPrefix is where normalized videos are published.
const videoKeyPrefix = "uploads/videos"

// maxVideoSize caps the raw video accepted for transcoding.
const maxVideoSize = 100 << 20

// Transcoder normalizes a video from inputPath to outputPath. progress, if
// non-nil, receives the number of media seconds processed so far.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string, progress func(seconds float64)) error
}

// FFmpeg invokes the external ffmpeg binary, targeting H.264 in an mp4
// container with the faststart flag so playback can begin before the file
// is fully downloaded.
type FFmpeg struct {
	BinPath string
}

// Transcode runs ffmpeg and blocks until it exits. Progress is parsed from
// ffmpeg's machine-readable "-progress" stream on stdout.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string, progress func(seconds float64)) error {
	cmd := exec.CommandContext(ctx, f.BinPath,
		"-i", inputPath,
		"-c:v", "libx264",
		"-f", "mp4",
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if progress == nil {
			continue
		}
		// Lines look like "out_time_ms=1234567" (microseconds, despite the name).
		if v, ok := strings.CutPrefix(line, "out_time_ms="); ok {
			if us, err := strconv.ParseInt(v, 10, 64); err == nil {
				progress(float64(us) / 1e6)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(msg))
	}
	return nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(strings.TrimRight(s, "\n"), '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// TranscodePipeline runs a video through the external transcoder and
// publishes the result to object storage. Each job owns its own temp paths;
// both are removed on every terminal outcome.
type TranscodePipeline struct {
	store   storage.Storage
	tc      Transcoder
	keys    *KeyDeriver
	tempDir string
	log     *slog.Logger
}

// NewTranscodePipeline wires a TranscodePipeline writing temp files under tempDir.
func NewTranscodePipeline(store storage.Storage, tc Transcoder, keys *KeyDeriver, tempDir string, log *slog.Logger) *TranscodePipeline {
	return &TranscodePipeline{store: store, tc: tc, keys: keys, tempDir: tempDir, log: log}
}

// SaveTemp writes an uploaded video to a per-job temp file and returns its
// path. Rejects non-video uploads and files over the video size cap before
// touching disk.
func (p *TranscodePipeline) SaveTemp(fh *multipart.FileHeader) (string, error) {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "video/") {
		return "", &ValidationError{Reason: fmt.Sprintf(
			"only video files are allowed. Received: %s", fh.Header.Get("Content-Type"))}
	}
	if fh.Size > maxVideoSize {
		return "", &ValidationError{Reason: fmt.Sprintf(
			"video %q exceeds the %dMB limit", fh.Filename, int64(maxVideoSize)>>20)}
	}

	if err := os.MkdirAll(p.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded video: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d_%d_%s", p.keys.now().UnixMilli(), p.keys.randInt(1_000_000), sanitizeName(fh.Filename))
	path := filepath.Join(p.tempDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}

// Run transcodes the video at inputPath and uploads the result, returning
// its public URL. On any outcome — success, transcoder failure, upload
// failure — both the input and output temp files are removed; cleanup
// failures are logged and never mask the primary result.
func (p *TranscodePipeline) Run(ctx context.Context, inputPath, originalName string) (string, error) {
	outputName := fmt.Sprintf("converted_%d_%d_%s",
		p.keys.now().UnixMilli(), p.keys.randInt(1_000_000), sanitizeName(originalName))
	outputPath := filepath.Join(p.tempDir, outputName)
	key := videoKeyPrefix + "/" + outputName

	defer func() {
		p.removeTemp(inputPath)
		p.removeTemp(outputPath)
	}()

	if _, err := os.Stat(inputPath); err != nil {
		return "", &TranscodeError{Stage: StageValidate, Err: fmt.Errorf("input file does not exist: %s", inputPath)}
	}

	err := p.tc.Transcode(ctx, inputPath, outputPath, func(seconds float64) {
		p.log.Debug("transcode progress", "input", inputPath, "seconds", seconds)
	})
	if err != nil {
		return "", &TranscodeError{Stage: StageTranscode, Err: err}
	}

	out, err := os.Open(outputPath)
	if err != nil {
		return "", &TranscodeError{Stage: StageUpload, Err: fmt.Errorf("transcoded output missing: %w", err)}
	}
	defer out.Close()

	stat, err := out.Stat()
	if err != nil {
		return "", &TranscodeError{Stage: StageUpload, Err: err}
	}

	meta := map[string]string{
		"original-name":  originalName,
		"converted-date": time.Now().UTC().Format(time.RFC3339),
		"file-size":      strconv.FormatInt(stat.Size(), 10),
	}
	if err := p.store.Upload(ctx, key, out, stat.Size(), "video/mp4", meta); err != nil {
		return "", &TranscodeError{Stage: StageUpload, Err: err}
	}

	url := p.store.PublicURL(key)
	p.log.Info("transcoded video published", "key", key, "size", stat.Size())
	return url, nil
}

func (p *TranscodePipeline) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.log.Warn("failed to clean up temp file", "path", path, "error", err)
	}
}
