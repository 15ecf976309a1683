// CLAUDE:SUMMARY OCR pass via the ocrmypdf executable — derived searchable PDF with typed failure modes.
// Package ocrpdf produces searchable PDFs from scanned ones.
//
// The primary engine shells out to ocrmypdf, which handles deskewing,
// rasterization, and text-layer grafting in one pass. It requires ocrmypdf
// (and therefore tesseract) on PATH; Available reports whether that holds.
// The tesseract recognizer in this package is the degraded-mode alternative
// for direct region recognition when ocrmypdf is absent.
package ocrpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Typed failure modes, matched with errors.Is.
var (
	ErrEngineNotInstalled = errors.New("ocrmypdf not installed")
	ErrLanguageMissing    = errors.New("ocr language data missing")
	ErrTimeout            = errors.New("ocr timed out")
)

// Config configures the OCR pass. The recognition parameters are fixed to
// the values that work on engineering drawings; only the binary, language,
// and raster density are tunable.
type Config struct {
	// Binary is the ocrmypdf executable (default: "ocrmypdf", found on PATH).
	Binary string `json:"binary" yaml:"binary"`

	// Language is the tesseract language pack (default: "eng").
	Language string `json:"language" yaml:"language"`

	// Oversample is the raster density in DPI for low-resolution scans
	// (default: 600).
	Oversample int `json:"oversample" yaml:"oversample"`

	// Logger for command-level debug output.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Binary == "" {
		c.Binary = "ocrmypdf"
	}
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.Oversample <= 0 {
		c.Oversample = 600
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pass implements bompipe.OCREngine over the ocrmypdf executable.
type Pass struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pass with the given configuration.
func New(cfg Config) *Pass {
	cfg.defaults()
	return &Pass{cfg: cfg, logger: cfg.Logger}
}

// Available reports whether the ocrmypdf binary can be found.
func (p *Pass) Available() bool {
	_, err := exec.LookPath(p.cfg.Binary)
	return err == nil
}

// Run OCRs srcPath into dstDir and returns the derived file's path. With
// force unset an existing text layer is preserved and only textless pages
// are recognized; with force set every page is re-rasterized. The caller
// owns dstDir and its cleanup.
func (p *Pass) Run(ctx context.Context, srcPath, dstDir string, force bool) (string, error) {
	if _, err := exec.LookPath(p.cfg.Binary); err != nil {
		return "", fmt.Errorf("%w: %s", ErrEngineNotInstalled, p.cfg.Binary)
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	outPath := filepath.Join(dstDir, base+"_ocr.pdf")

	args := buildArgs(p.cfg, srcPath, outPath, force)
	p.logger.Debug("running ocrmypdf", "args", args, "force", force)

	cmd := exec.CommandContext(ctx, p.cfg.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", classifyError(ctx, err, stderr.String())
	}
	return outPath, nil
}

// buildArgs assembles the ocrmypdf command line. Deskew is always on:
// engineering drawings are routinely scanned a degree or two off.
func buildArgs(cfg Config, src, dst string, force bool) []string {
	args := []string{
		"--language", cfg.Language,
		"--deskew",
		"--oversample", strconv.Itoa(cfg.Oversample),
		"--image-dpi", strconv.Itoa(cfg.Oversample),
	}
	if force {
		args = append(args, "--force-ocr")
	} else {
		args = append(args, "--skip-text")
	}
	return append(args, src, dst)
}

// classifyError maps process failures onto the package's typed errors.
func classifyError(ctx context.Context, err error, stderr string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "tessdata") || strings.Contains(lower, "language") && strings.Contains(lower, "missing") {
		return fmt.Errorf("%w: %s", ErrLanguageMissing, firstLine(stderr))
	}
	if strings.Contains(lower, "not installed") || strings.Contains(lower, "could not find program") {
		return fmt.Errorf("%w: %s", ErrEngineNotInstalled, firstLine(stderr))
	}
	if stderr != "" {
		return fmt.Errorf("ocrmypdf: %v: %s", err, firstLine(stderr))
	}
	return fmt.Errorf("ocrmypdf: %w", err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
