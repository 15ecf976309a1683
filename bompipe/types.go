// CLAUDE:SUMMARY Defines Classification, Document, CandidateTable, QualityScore, and MergedTable for the BOM pipeline.
package bompipe

// Classification describes the dominant content type of a PDF.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassText                   // searchable text layer present
	ClassImage                  // scanned or rasterized, needs OCR
)

func (c Classification) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassImage:
		return "image"
	default:
		return "unknown"
	}
}

// Document is a PDF under extraction. The classifier sets Class exactly once;
// an OCR pass produces a new Document for the derived file rather than
// mutating the input.
type Document struct {
	Path  string         `json:"path"`
	Pages PageSet        `json:"pages,omitempty"` // nil = all pages
	Class Classification `json:"class"`
}

// CandidateTable is a raw extraction result prior to quality validation.
// Grid rows may be ragged until PadRows is called.
type CandidateTable struct {
	Grid     [][]string `json:"grid"`
	Strategy string     `json:"strategy"` // adapter/configuration label
	Accuracy float64    `json:"accuracy"` // 0-100 engine confidence, negative = unknown
	Page     int        `json:"page"`
	Lenient  bool       `json:"lenient,omitempty"` // produced by a lenient ladder rung
}

// Rows returns the number of rows in the grid.
func (t *CandidateTable) Rows() int { return len(t.Grid) }

// Cols returns the widest row length in the grid.
func (t *CandidateTable) Cols() int {
	max := 0
	for _, row := range t.Grid {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// PadRows extends every row with empty cells until the grid is rectangular.
func (t *CandidateTable) PadRows() {
	width := t.Cols()
	for i, row := range t.Grid {
		for len(row) < width {
			row = append(row, "")
		}
		t.Grid[i] = row
	}
}

// QualityScore is the decision artifact produced when scoring a candidate.
// It is recomputed per candidate and never stored on the table itself.
type QualityScore struct {
	StructuralOK    bool     `json:"structural_ok"`
	BOMScore        int      `json:"bom_score"`
	RejectScore     int      `json:"reject_score"`
	StrongPositives int      `json:"strong_positives"`
	Reasons         []string `json:"reasons,omitempty"`
}

// MergedTable is the normalized output: accepted tables stacked under a
// canonical header after profile application.
type MergedTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
