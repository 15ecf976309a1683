// CLAUDE:SUMMARY pdfium-backed table engine — lattice and stream grid extraction behind bompipe.TableEngine.
// Package pdfgrid extracts table grids from PDF pages using the pdfium
// runtime. It implements the bompipe.TableEngine boundary with two
// algorithm families: lattice (cells from ruling lines) and stream (columns
// from whitespace alignment), plus an optional OCR fallback for pages with
// no text layer at all.
package pdfgrid

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/hazyhaar/bomex/bompipe"
)

// TextRecognizer turns a rendered page image (PNG) into plain text. Wired to
// the tesseract recognizer when direct OCR of textless regions is wanted.
type TextRecognizer interface {
	Recognize(png []byte) (string, error)
}

// Config configures the engine.
type Config struct {
	// Worker pool sizing for the pdfium webassembly runtime.
	MinIdle  int `json:"min_idle" yaml:"min_idle"`
	MaxIdle  int `json:"max_idle" yaml:"max_idle"`
	MaxTotal int `json:"max_total" yaml:"max_total"`

	// InstanceTimeout bounds checkout from the worker pool (default: 30s).
	InstanceTimeout time.Duration `json:"instance_timeout" yaml:"instance_timeout"`

	// RenderDPI for the OCR fallback raster (default: 300).
	RenderDPI int `json:"render_dpi" yaml:"render_dpi"`

	// Recognizer enables the OCR fallback for pages without a text layer.
	Recognizer TextRecognizer `json:"-" yaml:"-"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MinIdle <= 0 {
		c.MinIdle = 1
	}
	if c.MaxIdle <= 0 {
		c.MaxIdle = 1
	}
	if c.MaxTotal <= 0 {
		c.MaxTotal = 4
	}
	if c.InstanceTimeout <= 0 {
		c.InstanceTimeout = 30 * time.Second
	}
	if c.RenderDPI <= 0 {
		c.RenderDPI = 300
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine extracts table grids from PDFs. Safe for sequential reuse; the
// underlying pool also allows concurrent use across goroutines.
type Engine struct {
	pool   pdfium.Pool
	cfg    Config
	logger *slog.Logger
}

// New starts the pdfium webassembly runtime and returns an Engine. Call
// Close when done.
func New(cfg Config) (*Engine, error) {
	cfg.defaults()
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  cfg.MinIdle,
		MaxIdle:  cfg.MaxIdle,
		MaxTotal: cfg.MaxTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("pdfium init: %w", err)
	}
	return &Engine{pool: pool, cfg: cfg, logger: cfg.Logger}, nil
}

// Close shuts the pdfium worker pool down.
func (e *Engine) Close() error {
	return e.pool.Close()
}

// Tables extracts one grid per selected page according to cfg. Pages that
// yield nothing are skipped silently; an empty result is not an error.
func (e *Engine) Tables(ctx context.Context, pdfPath string, pages bompipe.PageSet, cfg bompipe.EngineConfig) ([]bompipe.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := e.pool.GetInstance(e.cfg.InstanceTimeout)
	if err != nil {
		return nil, fmt.Errorf("pdfium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{FilePath: &pdfPath})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", pdfPath, err)
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	var tables []bompipe.RawTable
	for p := 1; p <= pageCount.PageCount; p++ {
		if !pages.Contains(p) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return tables, err
		}
		rt, err := e.extractPage(instance, doc.Document, p, cfg)
		if err != nil {
			e.logger.Debug("page extraction failed", "path", pdfPath, "page", p, "err", err)
			continue
		}
		if rt != nil {
			tables = append(tables, *rt)
		}
	}
	return tables, nil
}

func (e *Engine) extractPage(instance pdfium.Pdfium, doc references.FPDF_DOCUMENT, pageNr int, cfg bompipe.EngineConfig) (*bompipe.RawTable, error) {
	pageRes, err := instance.FPDF_LoadPage(&requests.FPDF_LoadPage{Document: doc, Index: pageNr - 1})
	if err != nil {
		return nil, fmt.Errorf("load page %d: %w", pageNr, err)
	}
	defer instance.FPDF_ClosePage(&requests.FPDF_ClosePage{Page: pageRes.Page})

	widthRes, err := instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{ByReference: &pageRes.Page},
	})
	if err != nil {
		return nil, fmt.Errorf("page width: %w", err)
	}
	heightRes, err := instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{ByReference: &pageRes.Page},
	})
	if err != nil {
		return nil, fmt.Errorf("page height: %w", err)
	}
	pageW, pageH := float64(widthRes.PageWidth), float64(heightRes.PageHeight)

	words, err := extractWords(instance, pageRes.Page, pageH)
	if err != nil {
		return nil, err
	}
	edges, err := extractEdges(instance, pageRes.Page, pageW, pageH)
	if err != nil {
		// Ruling lines are an enhancement; stream mode still works.
		edges = nil
	}

	if cfg.Region != nil {
		words, edges = clipToRegion(words, edges, *cfg.Region, pageH)
	}

	if len(words) == 0 {
		if e.cfg.Recognizer == nil {
			return nil, nil
		}
		return e.recognizePage(instance, pageRes.Page, pageNr, pageH, cfg.Region)
	}

	minLineLen := pageW / 15
	if cfg.LineScale > 0 {
		minLineLen = pageW / float64(cfg.LineScale)
	}

	var grid [][]string
	switch cfg.Mode {
	case bompipe.ModeLattice:
		grid = buildLatticeGrid(words, edges, minLineLen)
	case bompipe.ModeStream:
		grid = buildStreamGrid(words, cfg.EdgeTolerance)
	default: // auto
		grid = buildLatticeGrid(words, edges, minLineLen)
		if grid == nil {
			grid = buildStreamGrid(words, cfg.EdgeTolerance)
		}
	}
	if grid == nil {
		return nil, nil
	}
	return &bompipe.RawTable{
		Grid:     grid,
		Accuracy: gridAccuracy(grid, len(words)),
		Page:     pageNr,
	}, nil
}

// clipToRegion keeps words and edges whose center lies inside the region.
// The region arrives in bottom-left PDF space while layout runs in top-left
// space, so the Y bounds flip once here.
func clipToRegion(words []word, edges []edge, region bompipe.PDFRegion, pageH float64) ([]word, []edge) {
	top := pageH - region.Top
	bottom := pageH - region.Bottom

	var ws []word
	for _, w := range words {
		if w.cx() >= region.Left && w.cx() <= region.Right && w.cy() >= top && w.cy() <= bottom {
			ws = append(ws, w)
		}
	}
	var es []edge
	for _, e := range edges {
		cx, cy := (e.x0+e.x1)/2, (e.y0+e.y1)/2
		if cx >= region.Left && cx <= region.Right && cy >= top && cy <= bottom {
			es = append(es, e)
		}
	}
	return ws, es
}

// recognizePage rasterizes the page (or region), runs the recognizer, and
// converts the text into a whitespace grid. Accuracy is unknown for OCR
// output.
func (e *Engine) recognizePage(instance pdfium.Pdfium, page references.FPDF_PAGE, pageNr int, pageH float64, region *bompipe.PDFRegion) (*bompipe.RawTable, error) {
	render, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		Page: requests.Page{ByReference: &page},
		DPI:  e.cfg.RenderDPI,
	})
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", pageNr, err)
	}

	img := image.Image(render.Result.Image)
	if region != nil {
		ratio := render.Result.PointToPixelRatio
		crop := image.Rect(
			int(region.Left*ratio),
			int((pageH-region.Top)*ratio),
			int(region.Right*ratio),
			int((pageH-region.Bottom)*ratio),
		)
		img = render.Result.Image.SubImage(crop)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode render: %w", err)
	}
	text, err := e.cfg.Recognizer.Recognize(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("recognize page %d: %w", pageNr, err)
	}

	grid := textToGrid(text)
	if len(grid) == 0 {
		return nil, nil
	}
	e.logger.Debug("ocr fallback produced grid", "page", pageNr, "rows", len(grid))
	return &bompipe.RawTable{Grid: grid, Accuracy: -1, Page: pageNr}, nil
}
