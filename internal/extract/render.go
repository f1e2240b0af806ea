package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Runner lets tests stub the external rasterizer binary.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		r.logger.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
	}
	return out.Bytes(), errb.Bytes(), err
}

// PageRenderer rasterizes document pages to images at a fixed DPI,
// capped at a maximum page count. It shells out to pdftoppm; each
// invocation uses its own temp directory, so concurrent requests never
// share canvas state.
type PageRenderer struct {
	runner   Runner
	binary   string
	dpi      int
	maxPages int
	logger   *slog.Logger
}

// NewPageRenderer creates a renderer. A nil runner uses the real binary.
func NewPageRenderer(runner Runner, dpi, maxPages int, logger *slog.Logger) *PageRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &PageRenderer{
		runner:   runner,
		binary:   "pdftoppm",
		dpi:      dpi,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Render rasterizes the document and returns decoded page images in page
// order, truncated at the page cap.
func (r *PageRenderer) Render(ctx context.Context, document []byte) ([]image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "recordlens-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	src := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(src, document, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", r.dpi), "-png", src, prefix}
	if r.maxPages > 0 {
		args = append([]string{"-f", "1", "-l", fmt.Sprintf("%d", r.maxPages)}, args...)
	}
	if _, errb, err := r.runner.Run(ctx, r.binary, args...); err != nil {
		return nil, fmt.Errorf("render pages: %w (%s)", err, strings.TrimSpace(string(errb)))
	}

	// pdftoppm writes prefix-1.png, prefix-2.png, ... zero-padded per
	// page count, so a lexical sort preserves page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.maxPages > 0 && len(matches) > r.maxPages {
		matches = matches[:r.maxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("renderer produced no pages")
	}

	pages := make([]image.Image, 0, len(matches))
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// EncodePNG serializes a preprocessed page back to bytes for the OCR port
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
