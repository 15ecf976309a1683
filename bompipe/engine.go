// CLAUDE:SUMMARY Engine boundaries — TableEngine and OCREngine interfaces consumed by the pipeline.
package bompipe

import "context"

// EngineMode selects the table-detection algorithm family.
type EngineMode string

const (
	// ModeLattice detects cells from ruling lines.
	ModeLattice EngineMode = "lattice"
	// ModeStream infers columns from whitespace alignment.
	ModeStream EngineMode = "stream"
	// ModeAuto lets the engine pick lattice when ruling lines exist, stream otherwise.
	ModeAuto EngineMode = "auto"
)

// EngineConfig is one parameter set for a table engine. Adapters walk an
// ordered ladder of these.
type EngineConfig struct {
	Name string `json:"name"` // label used in Strategy and attempt reports

	Mode EngineMode `json:"mode"`

	// LineScale tunes ruling-line sensitivity in lattice mode: larger values
	// detect shorter lines. Zero means engine default.
	LineScale int `json:"line_scale,omitempty"`

	// EdgeTolerance is the column alignment slack in stream mode, in PDF
	// points. Zero means engine default.
	EdgeTolerance float64 `json:"edge_tolerance,omitempty"`

	// MinAccuracy discards tables the engine reports below this confidence
	// (0-100). Zero accepts everything.
	MinAccuracy float64 `json:"min_accuracy,omitempty"`

	// MinRows and MinCols gate the extracted grid size.
	MinRows int `json:"min_rows"`
	MinCols int `json:"min_cols"`

	// Lenient marks the loosest rungs: their candidates are validated with
	// the relaxed 2-row minimum.
	Lenient bool `json:"lenient,omitempty"`

	// Region restricts extraction to a rectangle in PDF space. Nil means
	// whole page.
	Region *PDFRegion `json:"region,omitempty"`
}

// RawTable is an engine extraction result before adapter filtering.
type RawTable struct {
	Grid     [][]string
	Accuracy float64 // 0-100; negative = engine does not report confidence
	Page     int
}

// TableEngine extracts candidate grids from a PDF. Implementations must be
// safe for sequential reuse across documents.
type TableEngine interface {
	Tables(ctx context.Context, pdfPath string, pages PageSet, cfg EngineConfig) ([]RawTable, error)
}

// OCREngine produces a searchable PDF from a scanned one.
//
// Run writes the derived file into dstDir (created and later removed by the
// caller) and returns its path. When force is false an existing text layer
// is preserved; when true every page is re-rasterized and recognized.
type OCREngine interface {
	Available() bool
	Run(ctx context.Context, srcPath, dstDir string, force bool) (string, error)
}
