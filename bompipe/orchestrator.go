// CLAUDE:SUMMARY Extraction orchestrator — classification, adapter ordering, OCR fallback, ROI mode.
package bompipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/bomex/idgen"
)

// Orchestrator drives a document through classification, the two strategy
// adapters, and the OCR fallback until a table is accepted or every option
// is exhausted.
type Orchestrator struct {
	cfg        Config
	classifier DocumentClassifier
	text       Adapter
	geometric  Adapter
	roiText    Adapter
	roiGeo     Adapter
	validator  *Validator
	lenient    *Validator
	logger     *slog.Logger
}

// New creates an Orchestrator. cfg.Engine is required; cfg.OCR may be nil,
// which disables the OCR fallback.
func New(cfg Config) *Orchestrator {
	cfg.defaults()
	if cfg.Classifier == nil {
		cfg.Classifier = NewClassifier(cfg)
	}
	return &Orchestrator{
		cfg:        cfg,
		classifier: cfg.Classifier,
		text:       NewTextLayerAdapter(cfg),
		geometric:  NewGeometricAdapter(cfg),
		roiText:    newROIAdapter("text-layer", cfg),
		roiGeo:     newROIAdapter("geometric", cfg),
		validator:  NewValidator(cfg),
		lenient:    NewLenientValidator(cfg),
		logger:     cfg.Logger,
	}
}

// Request describes one extraction job.
type Request struct {
	Path     string
	Pages    PageSet
	ForceOCR bool
	ROI      *Region // non-nil switches to region mode
}

// Result carries the accepted tables and the document they came from, which
// is the OCR-derived file when the fallback fired.
type Result struct {
	Doc    Document
	Tables []CandidateTable
	Report AttemptReport
}

// ocrTempName names per-document OCR working directories. Unique names keep
// concurrent pipelines from colliding under a shared temp root.
var ocrTempName = idgen.Prefixed("bomex_ocr_", idgen.Timestamped(idgen.UUIDv7()))

// Extract runs the full state machine. On total failure the returned error
// wraps ErrNoTables and carries the attempt report.
func (o *Orchestrator) Extract(ctx context.Context, req Request) (*Result, error) {
	if req.ROI != nil {
		return o.extractROI(ctx, req)
	}

	class := o.classifier.Classify(ctx, req.Path)
	doc := Document{Path: req.Path, Pages: req.Pages, Class: class}
	report := AttemptReport{Class: class, OCRAvailable: o.ocrAvailable()}
	o.logger.Info("starting extraction", "path", req.Path, "class", class, "pages", req.Pages)

	var tempDir string
	defer func() {
		if tempDir != "" {
			if err := os.RemoveAll(tempDir); err != nil {
				o.logger.Error("ocr temp cleanup failed", "dir", tempDir, "err", err)
			}
		}
	}()

	if req.ForceOCR {
		if !o.ocrAvailable() {
			return nil, fmt.Errorf("forced OCR requested but no OCR engine is available")
		}
		derived, dir, _, err := o.ocrPass(ctx, doc, true)
		if err != nil {
			return nil, fmt.Errorf("forced OCR: %w", err)
		}
		doc, tempDir = derived, dir
		report.OCRApplied, report.OCRForced = true, true
	}

	if tables := o.cycle(ctx, doc, nil, &report, report.OCRApplied); len(tables) > 0 {
		return &Result{Doc: doc, Tables: tables, Report: report}, ctx.Err()
	}

	if !report.OCRApplied && o.ocrAvailable() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// A document classified as image gets the aggressive treatment right
		// away; a text document first gets the text-preserving pass, then
		// one forced retry if the result still classifies as image.
		force := class == ClassImage
		derived, dir, forced, err := o.ocrPass(ctx, doc, force)
		if err == nil && derived.Path == doc.Path {
			// The non-forced pass is a no-op on a text-classified document,
			// but its text layer demonstrably holds no table. Escalate once.
			derived, dir, forced, err = o.ocrPass(ctx, doc, true)
		}
		switch {
		case err != nil:
			o.logger.Warn("ocr fallback failed", "path", doc.Path, "err", err)
		case derived.Path != doc.Path:
			doc, tempDir = derived, dir
			report.OCRApplied = true
			report.OCRForced = forced
			if tables := o.cycle(ctx, doc, nil, &report, true); len(tables) > 0 {
				return &Result{Doc: doc, Tables: tables, Report: report}, ctx.Err()
			}
		}
	}

	o.logger.Info("extraction exhausted all strategies", "path", req.Path, "attempts", len(report.Attempts))
	return nil, &NoTablesError{Report: report}
}

// cycle runs both adapters in class order and returns the first accepted set.
func (o *Orchestrator) cycle(ctx context.Context, doc Document, region *PDFRegion, report *AttemptReport, afterOCR bool) []CandidateTable {
	order := []Adapter{o.text, o.geometric}
	if doc.Class == ClassImage {
		order = []Adapter{o.geometric, o.text}
	}

	for _, adapter := range order {
		if ctx.Err() != nil {
			return nil
		}
		candidates, attempts, err := adapter.Extract(ctx, doc, region)
		for i := range attempts {
			attempts[i].AfterOCR = afterOCR
			o.logger.Debug("attempt", "outcome", attemptLabel(attempts[i]), "after_ocr", afterOCR)
		}
		if err != nil {
			report.Attempts = append(report.Attempts, attempts...)
			continue
		}

		var accepted []CandidateTable
		for _, c := range candidates {
			v := o.validator
			if c.Lenient {
				v = o.lenient
			}
			if v.Accept(&c) {
				accepted = append(accepted, c)
			}
		}
		if len(attempts) > 0 {
			attempts[len(attempts)-1].Accepted = len(accepted)
		}
		report.Attempts = append(report.Attempts, attempts...)

		if len(accepted) > 0 {
			o.logger.Info("tables accepted", "adapter", adapter.Name(), "count", len(accepted))
			return accepted
		}
	}
	return nil
}

// ocrPass runs one OCR attempt in a fresh private temp dir and re-classifies
// the derived document. A text-classified document with force unset is a
// no-op: the pass returns the input untouched. The returned bool reports
// whether a forced run happened, including the bounded internal escalation.
func (o *Orchestrator) ocrPass(ctx context.Context, doc Document, force bool) (Document, string, bool, error) {
	if doc.Class == ClassText && !force {
		return doc, "", false, nil
	}

	dir := filepath.Join(o.tempRoot(), ocrTempName())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return doc, "", false, fmt.Errorf("ocr temp dir: %w", err)
	}

	octx, cancel := context.WithTimeout(ctx, o.cfg.OCRTimeout)
	defer cancel()

	out, err := o.cfg.OCR.Run(octx, doc.Path, dir, force)
	if err != nil {
		os.RemoveAll(dir)
		return doc, "", force, err
	}

	derived := Document{Path: out, Pages: doc.Pages}
	derived.Class = o.classifier.Classify(ctx, out)
	o.logger.Info("ocr pass complete", "src", doc.Path, "out", out, "class", derived.Class, "forced", force)

	// Bounded escalation: one forced retry when the gentle pass left the
	// document unsearchable.
	if derived.Class == ClassImage && !force {
		out, err = o.cfg.OCR.Run(octx, doc.Path, dir, true)
		if err != nil {
			os.RemoveAll(dir)
			return doc, "", true, fmt.Errorf("forced retry: %w", err)
		}
		derived = Document{Path: out, Pages: doc.Pages}
		derived.Class = o.classifier.Classify(ctx, out)
		o.logger.Info("forced ocr retry complete", "out", out, "class", derived.Class)
		force = true
	}
	return derived, dir, force, nil
}

// extractROI skips classification and constrains both adapters to the
// converted region. Acceptance is permissive: any non-empty grid counts,
// the caller selected the rectangle deliberately.
func (o *Orchestrator) extractROI(ctx context.Context, req Request) (*Result, error) {
	if err := req.ROI.Valid(); err != nil {
		return nil, err
	}

	doc := Document{Path: req.Path, Pages: PageSet{req.ROI.Page}}
	report := AttemptReport{Class: ClassUnknown, OCRAvailable: o.ocrAvailable()}

	var tempDir string
	defer func() {
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
	}()

	paddings := []float64{o.cfg.ROIPadding, o.cfg.ROIExpandedPadding}
	for round, pad := range paddings {
		w, h, err := PageSize(doc.Path, req.ROI.Page)
		if err != nil {
			return nil, fmt.Errorf("roi page size: %w", err)
		}
		region := req.ROI.ToPDF(w, h, pad)

		if tables := o.roiCycle(ctx, doc, &region, &report); len(tables) > 0 {
			return &Result{Doc: doc, Tables: tables, Report: report}, ctx.Err()
		}

		// No text in the region on the first round usually means a scanned
		// page: OCR once before widening the search.
		if round == 0 && !report.OCRApplied && o.ocrAvailable() {
			derived, dir, _, err := o.ocrPass(ctx, doc, false)
			if err != nil {
				o.logger.Warn("roi ocr failed", "path", doc.Path, "err", err)
			} else if derived.Path != doc.Path {
				doc, tempDir = derived, dir
				report.OCRApplied = true
				if tables := o.roiCycle(ctx, doc, &region, &report); len(tables) > 0 {
					return &Result{Doc: doc, Tables: tables, Report: report}, ctx.Err()
				}
			}
		}
	}
	return nil, &NoTablesError{Report: report}
}

func (o *Orchestrator) roiCycle(ctx context.Context, doc Document, region *PDFRegion, report *AttemptReport) []CandidateTable {
	for _, adapter := range []Adapter{o.roiText, o.roiGeo} {
		if ctx.Err() != nil {
			return nil
		}
		candidates, attempts, err := adapter.Extract(ctx, doc, region)
		report.Attempts = append(report.Attempts, attempts...)
		if err != nil || len(candidates) == 0 {
			continue
		}
		if len(attempts) > 0 {
			report.Attempts[len(report.Attempts)-1].Accepted = len(candidates)
		}
		return candidates
	}
	return nil
}

func (o *Orchestrator) ocrAvailable() bool {
	return o.cfg.OCR != nil && o.cfg.OCR.Available()
}

func (o *Orchestrator) tempRoot() string {
	if o.cfg.TempDir != "" {
		return o.cfg.TempDir
	}
	return os.TempDir()
}
