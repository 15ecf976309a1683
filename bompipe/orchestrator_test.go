package bompipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// pathEngine returns canned results per document path and records calls as
// "path/config".
type pathEngine struct {
	byPath map[string][]RawTable
	calls  []string
}

func (e *pathEngine) Tables(_ context.Context, path string, _ PageSet, cfg EngineConfig) ([]RawTable, error) {
	e.calls = append(e.calls, filepath.Base(path)+"/"+cfg.Name)
	return e.byPath[filepath.Base(path)], nil
}

type fakeClassifier struct {
	byPath   map[string]Classification
	fallback Classification
}

func (f *fakeClassifier) Classify(_ context.Context, path string) Classification {
	if c, ok := f.byPath[filepath.Base(path)]; ok {
		return c
	}
	return f.fallback
}

// fakeOCR materializes a derived file in dstDir and records force flags.
type fakeOCR struct {
	available bool
	err       error
	calls     []bool
	lastDir   string
}

func (f *fakeOCR) Available() bool { return f.available }

func (f *fakeOCR) Run(_ context.Context, _, dstDir string, force bool) (string, error) {
	f.calls = append(f.calls, force)
	f.lastDir = dstDir
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(dstDir, "derived_ocr.pdf")
	if err := os.WriteFile(out, []byte("%PDF-1.4"), 0o600); err != nil {
		return "", err
	}
	return out, nil
}

func TestOrchestrator_TextDocTriesTextLayerFirst(t *testing.T) {
	// WHAT: A text-classified document runs the text-layer ladder before the
	// geometric one and stops at the first accepted table.
	// WHY: The ordering policy is the core of strategy selection.
	engine := &pathEngine{byPath: map[string][]RawTable{"doc.pdf": goodRaw()}}
	o := New(Config{
		Engine:     engine,
		Classifier: &fakeClassifier{fallback: ClassText},
		TempDir:    t.TempDir(),
	})

	res, err := o.Extract(context.Background(), Request{Path: "doc.pdf"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(res.Tables))
	}
	if engine.calls[0] != "doc.pdf/lattice" {
		t.Errorf("first call = %q, want doc.pdf/lattice (text-layer ladder)", engine.calls[0])
	}
	if res.Report.Class != ClassText {
		t.Errorf("report class = %v", res.Report.Class)
	}
}

func TestOrchestrator_ImageDocTriesGeometricFirst(t *testing.T) {
	// WHAT: An image-classified document runs the geometric ladder first.
	// WHY: Scanned drawings rarely have a text layer worth trying first.
	engine := &pathEngine{byPath: map[string][]RawTable{"scan.pdf": goodRaw()}}
	o := New(Config{
		Engine:     engine,
		Classifier: &fakeClassifier{byPath: map[string]Classification{"scan.pdf": ClassImage}},
		TempDir:    t.TempDir(),
	})

	_, err := o.Extract(context.Background(), Request{Path: "scan.pdf"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if engine.calls[0] != "scan.pdf/lattice-strict" {
		t.Errorf("first call = %q, want scan.pdf/lattice-strict (geometric ladder)", engine.calls[0])
	}
}

func TestOrchestrator_ImageDocGetsForcedOCRBeforeFail(t *testing.T) {
	// WHAT: When every strategy fails on an image document, a forced OCR pass
	// runs and the full adapter cycle repeats on the derived file.
	// WHY: Declaring failure without attempting OCR would abandon exactly the
	// documents the pipeline exists for.
	engine := &pathEngine{byPath: map[string][]RawTable{"derived_ocr.pdf": goodRaw()}}
	ocr := &fakeOCR{available: true}
	o := New(Config{
		Engine: engine,
		OCR:    ocr,
		Classifier: &fakeClassifier{
			byPath:   map[string]Classification{"scan.pdf": ClassImage},
			fallback: ClassText, // derived file classifies as text
		},
		TempDir: t.TempDir(),
	})

	res, err := o.Extract(context.Background(), Request{Path: "scan.pdf"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(ocr.calls) != 1 || !ocr.calls[0] {
		t.Errorf("ocr calls = %v, want one forced run", ocr.calls)
	}
	if !res.Report.OCRApplied || !res.Report.OCRForced {
		t.Errorf("report = %+v, want OCR applied and forced", res.Report)
	}
	if filepath.Base(res.Doc.Path) != "derived_ocr.pdf" {
		t.Errorf("result doc = %q, want the derived file", res.Doc.Path)
	}
	if _, err := os.Stat(ocr.lastDir); !os.IsNotExist(err) {
		t.Errorf("ocr temp dir %s not cleaned up", ocr.lastDir)
	}
}

func TestOrchestrator_TextDocEscalatesToForcedOCR(t *testing.T) {
	// WHAT: For a text document with no accepted tables, the non-forced pass
	// is a no-op and exactly one forced pass follows.
	// WHY: The text layer demonstrably holds no table; re-rasterizing is the
	// only move left, and it must stay bounded to a single retry.
	engine := &pathEngine{byPath: map[string][]RawTable{}}
	ocr := &fakeOCR{available: true}
	o := New(Config{
		Engine:     engine,
		OCR:        ocr,
		Classifier: &fakeClassifier{fallback: ClassText},
		TempDir:    t.TempDir(),
	})

	_, err := o.Extract(context.Background(), Request{Path: "doc.pdf"})
	if !errors.Is(err, ErrNoTables) {
		t.Fatalf("err = %v, want ErrNoTables", err)
	}
	if len(ocr.calls) != 1 || !ocr.calls[0] {
		t.Errorf("ocr calls = %v, want exactly one forced run", ocr.calls)
	}

	var nte *NoTablesError
	if !errors.As(err, &nte) {
		t.Fatal("error should carry the attempt report")
	}
	if !nte.Report.OCRApplied || !nte.Report.OCRForced {
		t.Errorf("report = %+v", nte.Report)
	}
	// Two full cycles: both adapters, all rungs, before and after OCR.
	if len(nte.Report.Attempts) != 16 {
		t.Errorf("attempts = %d, want 16", len(nte.Report.Attempts))
	}
	post := 0
	for _, a := range nte.Report.Attempts {
		if a.AfterOCR {
			post++
		}
	}
	if post != 8 {
		t.Errorf("post-OCR attempts = %d, want 8", post)
	}
}

func TestOrchestrator_NoOCRAvailable(t *testing.T) {
	// WHAT: Without an OCR engine the failure report says so and no retry
	// cycle happens.
	// WHY: Operators need to distinguish "bad document" from "missing
	// dependency".
	engine := &pathEngine{}
	o := New(Config{
		Engine:     engine,
		Classifier: &fakeClassifier{fallback: ClassImage},
		TempDir:    t.TempDir(),
	})

	_, err := o.Extract(context.Background(), Request{Path: "scan.pdf"})
	var nte *NoTablesError
	if !errors.As(err, &nte) {
		t.Fatalf("err = %v", err)
	}
	if nte.Report.OCRAvailable || nte.Report.OCRApplied {
		t.Errorf("report = %+v, want no OCR", nte.Report)
	}
	if len(nte.Report.Attempts) != 8 {
		t.Errorf("attempts = %d, want 8 (single cycle)", len(nte.Report.Attempts))
	}
}

func TestOrchestrator_ForcedRequestNeedsOCR(t *testing.T) {
	// WHAT: An explicit force-OCR request without an engine is an error, not
	// a silent downgrade.
	// WHY: The caller asked for behavior the deployment cannot deliver.
	o := New(Config{
		Engine:     &pathEngine{},
		Classifier: &fakeClassifier{fallback: ClassText},
		TempDir:    t.TempDir(),
	})
	if _, err := o.Extract(context.Background(), Request{Path: "doc.pdf", ForceOCR: true}); err == nil {
		t.Fatal("expected error for forced OCR without engine")
	}
}

func TestOrchestrator_RejectedCandidatesDoNotTerminate(t *testing.T) {
	// WHAT: A structurally fine but non-BOM table does not stop the cycle.
	// WHY: Accept-first-valid means validator-accepted, not merely extracted.
	engine := &pathEngine{byPath: map[string][]RawTable{
		"doc.pdf": {{Grid: [][]string{
			{"REVISIONS", "REV", "ZONE", "DATE"},
			{"A", "B2", "C1", "01/04/24"},
			{"B", "C1", "D2", "03/12/24"},
		}, Accuracy: 95, Page: 1}},
	}}
	o := New(Config{
		Engine:     engine,
		Classifier: &fakeClassifier{fallback: ClassText},
		TempDir:    t.TempDir(),
	})

	_, err := o.Extract(context.Background(), Request{Path: "doc.pdf"})
	if !errors.Is(err, ErrNoTables) {
		t.Fatalf("err = %v, want ErrNoTables", err)
	}
	// Both adapters ran despite the first one producing a candidate: the
	// rejected table never short-circuited the cycle.
	if len(engine.calls) != 2 {
		t.Errorf("calls = %v, want one rung per adapter", engine.calls)
	}
	var nte *NoTablesError
	if !errors.As(err, &nte) {
		t.Fatal("error should carry the attempt report")
	}
	for _, a := range nte.Report.Attempts {
		if a.Accepted != 0 {
			t.Errorf("attempt %s/%s accepted %d tables", a.Adapter, a.Config, a.Accepted)
		}
	}
}

func TestOrchestrator_LooseRungTableGetsLenientValidation(t *testing.T) {
	// WHAT: A two-row table that only the loosest geometric rung finds is
	// accepted under the relaxed row minimum those rungs carry.
	// WHY: The loose rungs exist for marginal grids; holding their output to
	// the strict three-row floor would make them dead ends.
	engine := &fakeEngine{results: map[string][]RawTable{
		"stream-loose": {{
			Grid: [][]string{
				{"ITEM", "QTY", "DESCRIPTION", "PART NO", "MFG"},
				{"1", "2", "WASHER", "W-9", "HEYCO"},
			},
			Accuracy: 40,
			Page:     1,
		}},
	}}
	o := New(Config{
		Engine:     engine,
		Classifier: &fakeClassifier{fallback: ClassText},
		TempDir:    t.TempDir(),
	})

	res, err := o.Extract(context.Background(), Request{Path: "doc.pdf"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("tables = %d, want 1 from the loose rung", len(res.Tables))
	}
	if res.Tables[0].Strategy != "geometric/stream-loose" {
		t.Errorf("strategy = %q, want geometric/stream-loose", res.Tables[0].Strategy)
	}
	if !res.Tables[0].Lenient {
		t.Error("table from a loose rung should carry the lenient mark")
	}
}
