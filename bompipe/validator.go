// CLAUDE:SUMMARY Table quality validator — structural gates plus BOM-likelihood scoring over header synonyms.
package bompipe

import (
	"fmt"
	"regexp"
	"strings"
)

// headerSynonyms maps each BOM concept to the header spellings seen across
// customer drawings. Matching is case-insensitive on normalized cell text.
var headerSynonyms = map[string][]string{
	"item":         {"ITEM", "ITEM NO", "ITEM NO.", "ITEM NUMBER", "NO", "POS", "POSITION"},
	"quantity":     {"QTY", "QUANTITY", "QUANT.", "AMOUNT"},
	"description":  {"DESCRIPTION", "DESC", "DETAILS", "PART DESCRIPTION", "PART NAME", "ITEM DESCRIPTION", "DEVICE"},
	"manufacturer": {"MANUFACTURER", "MFG", "MFR", "MAKE", "BRAND"},
	"part_number":  {"PART NO", "PART NUMBER", "P/N", "PN", "MODEL NO", "MODEL", "MPN"},
}

// strongIndicators are vocabulary fragments that essentially only occur in
// bills of materials: the title block itself, well-known component vendors,
// and assembly nomenclature.
var strongIndicators = []string{
	"BILL OF MATERIAL", "BILL OF MATERIALS", "BOM",
	"ALPHA WIRE", "HEYCO", "SIEMENS", "PHOENIX", "SQUARE D", "EATON", "ALLEN BRADLEY",
	"ASSEMBLY", "COMPONENT", "HARDWARE", "ELECTRICAL", "MECHANICAL", "FASTENER",
	"WASHER", "SCREW", "BOLT", "GASKET", "TERMINAL",
}

// rejectKeywords flag drawing-frame boilerplate: title blocks, revision
// tables, and document-control stamps that tabulate like a BOM but are not.
var rejectKeywords = []string{
	"PRINTED DRAWING", "REFERENCE ONLY", "DOCUMENT CONTROL", "LATEST REVISION",
	"PROPERTY OF", "CONFIDENTIAL", "DO NOT SCALE", "SHEET", "DRAWN BY",
	"CHECKED BY", "APPROVED BY", "SCALE", "DWG",
	"GENERAL NOTES", "WORKMANSHIP", "UNLESS OTHERWISE SPECIFIED",
}

// revisionIndicators identify revision-history tables. Four or more distinct
// hits reject the candidate outright regardless of score.
var revisionIndicators = []string{
	"REVISIONS", "REVISION", "REV", "ZONE", "DATE", "APPROVED", "ECN", "ECO", "CHANGE",
}

const (
	acceptThreshold   = 2
	minFillRatio      = 0.10
	maxLeadingCell    = 500
	maxMeanCell       = 200
	minHeaderFill     = 0.50
	minDistinctValues = 5
)

// Validator scores candidate tables. Score and Accept are pure: they never
// mutate the candidate and depend only on its grid.
type Validator struct {
	cfg Config

	// Lenient lowers the minimum row count from 3 to 2. Candidates from the
	// lenient ladder rungs are validated this way.
	Lenient bool
}

// NewValidator creates a Validator with the given configuration.
func NewValidator(cfg Config) *Validator {
	cfg.defaults()
	return &Validator{cfg: cfg}
}

// NewLenientValidator creates a Validator with the relaxed 2-row minimum,
// used for candidates the loosest ladder rungs produce.
func NewLenientValidator(cfg Config) *Validator {
	cfg.defaults()
	return &Validator{cfg: cfg, Lenient: true}
}

// Accept reports whether the candidate passes both the structural gates and
// the BOM-likelihood threshold.
func (v *Validator) Accept(t *CandidateTable) bool {
	s := v.Score(t)
	if !s.StructuralOK {
		return false
	}
	return s.BOMScore-2*s.RejectScore >= acceptThreshold && hasRequiredConcepts(t)
}

// Score computes the full quality breakdown for a candidate.
func (v *Validator) Score(t *CandidateTable) QualityScore {
	var s QualityScore
	s.StructuralOK = v.structural(t, &s)
	if !s.StructuralOK {
		return s
	}

	upper := upperGrid(t.Grid)
	header := upper[0]

	concepts := matchConcepts(header)
	for _, c := range []string{"item", "quantity", "description"} {
		if concepts[c] {
			s.BOMScore++
			s.Reasons = append(s.Reasons, "header concept: "+c)
		}
	}
	if concepts["manufacturer"] {
		s.BOMScore += 2
		s.Reasons = append(s.Reasons, "header concept: manufacturer")
	}
	if concepts["part_number"] {
		s.BOMScore += 2
		s.Reasons = append(s.Reasons, "header concept: part_number")
	}

	// Quantity-like numeric columns.
	numeric := numericColumns(t.Grid)
	switch {
	case numeric >= 2:
		s.BOMScore += 2
		s.Reasons = append(s.Reasons, fmt.Sprintf("%d numeric columns", numeric))
	case numeric == 1:
		s.BOMScore++
		s.Reasons = append(s.Reasons, "1 numeric column")
	}

	// Fill density of the body.
	density := fillRatio(t.Grid)
	switch {
	case density > 0.6:
		s.BOMScore += 2
	case density > 0.4:
		s.BOMScore++
	case density < 0.3:
		s.BOMScore -= 2
		s.Reasons = append(s.Reasons, fmt.Sprintf("sparse grid (%.0f%% filled)", density*100))
	}

	joined := strings.Join(flatten(upper), " ")
	for _, ind := range strongIndicators {
		if strings.Contains(joined, ind) {
			s.BOMScore++
			s.StrongPositives++
		}
	}
	for _, kw := range rejectKeywords {
		if strings.Contains(joined, kw) {
			s.RejectScore++
			s.Reasons = append(s.Reasons, "reject keyword: "+kw)
		}
	}

	// A revision-history table mimics a BOM structurally. Enough distinct
	// revision indicators overrule everything else.
	revHits := 0
	for _, ind := range revisionIndicators {
		if strings.Contains(joined, ind) {
			revHits++
		}
	}
	if revHits >= 4 {
		s.StructuralOK = false
		s.Reasons = append(s.Reasons, fmt.Sprintf("revision table (%d indicators)", revHits))
	}

	return s
}

func (v *Validator) structural(t *CandidateTable, s *QualityScore) bool {
	minRows := 3
	if v.Lenient {
		minRows = 2
	}
	if t.Rows() < minRows || t.Cols() < 2 {
		s.Reasons = append(s.Reasons, fmt.Sprintf("too small: %dx%d", t.Rows(), t.Cols()))
		return false
	}
	if t.Rows() > v.cfg.MaxTableRows || t.Cols() > v.cfg.MaxTableCols {
		s.Reasons = append(s.Reasons, fmt.Sprintf("too large: %dx%d", t.Rows(), t.Cols()))
		return false
	}
	if r := fillRatio(t.Grid); r < minFillRatio {
		s.Reasons = append(s.Reasons, fmt.Sprintf("fill ratio %.2f below %.2f", r, minFillRatio))
		return false
	}

	// Oversized cells in the leading rows indicate the engine swallowed a
	// paragraph of drawing notes.
	total, count := 0, 0
	for i, row := range t.Grid {
		for _, cell := range row {
			n := len([]rune(cell))
			if i < 3 && n > maxLeadingCell {
				s.Reasons = append(s.Reasons, fmt.Sprintf("cell of %d chars in row %d", n, i))
				return false
			}
			if cell != "" {
				total += n
				count++
			}
		}
	}
	if count > 0 && total/count > maxMeanCell {
		s.Reasons = append(s.Reasons, fmt.Sprintf("mean cell length %d", total/count))
		return false
	}

	// The header row of a real table is mostly populated.
	header := t.Grid[0]
	filled := 0
	for _, cell := range header {
		if strings.TrimSpace(cell) != "" {
			filled++
		}
	}
	if len(header) > 0 && float64(filled)/float64(len(header)) < minHeaderFill {
		s.Reasons = append(s.Reasons, "sparse header row")
		return false
	}

	if distinctValues(t.Grid) < minDistinctValues {
		s.Reasons = append(s.Reasons, "too few distinct values")
		return false
	}
	return true
}

func hasRequiredConcepts(t *CandidateTable) bool {
	if t.Rows() == 0 {
		return false
	}
	concepts := matchConcepts(upperGrid(t.Grid)[0])
	return concepts["item"] && concepts["quantity"]
}

// matchConcepts reports which BOM concepts the header row covers.
func matchConcepts(header []string) map[string]bool {
	found := make(map[string]bool)
	for _, cell := range header {
		norm := normalizeHeader(cell)
		if norm == "" {
			continue
		}
		for concept, names := range headerSynonyms {
			for _, name := range names {
				if headerMatches(norm, name) {
					found[concept] = true
				}
			}
		}
	}
	return found
}

// headerMatches reports whether a normalized header cell carries the synonym,
// either verbatim or as a whole-token phrase inside a compound header like
// "TOTAL QTY". Synonyms shorter than three characters match verbatim only, so
// "NO" never fires on "PART NO" or "NOTES".
func headerMatches(norm, name string) bool {
	want := normalizeHeader(name)
	if norm == want {
		return true
	}
	if len(want) < 3 {
		return false
	}
	return containsTokenPhrase(strings.Fields(norm), strings.Fields(want))
}

func containsTokenPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

var headerJunkRe = regexp.MustCompile(`[^A-Z0-9/ ]`)

// normalizeHeader uppercases and strips punctuation so "Item No." and
// "ITEM NO" compare equal.
func normalizeHeader(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = headerJunkRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func upperGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = strings.ToUpper(cell)
		}
	}
	return out
}

func flatten(grid [][]string) []string {
	var out []string
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}

func fillRatio(grid [][]string) float64 {
	total, filled := 0, 0
	for _, row := range grid {
		for _, cell := range row {
			total++
			if strings.TrimSpace(cell) != "" {
				filled++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

func distinctValues(grid [][]string) int {
	seen := make(map[string]bool)
	for _, row := range grid {
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell != "" {
				seen[cell] = true
			}
		}
	}
	return len(seen)
}

var numericCellRe = regexp.MustCompile(`^\d+([.,]\d+)?$`)

// numericColumns counts body columns whose populated cells are dominantly
// numeric, a strong signal for item and quantity columns.
func numericColumns(grid [][]string) int {
	if len(grid) < 2 {
		return 0
	}
	cols := 0
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	for c := 0; c < width; c++ {
		numeric, populated := 0, 0
		for _, row := range grid[1:] {
			if c >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[c])
			if cell == "" {
				continue
			}
			populated++
			if numericCellRe.MatchString(cell) {
				numeric++
			}
		}
		if populated > 0 && float64(numeric)/float64(populated) >= 0.7 {
			cols++
		}
	}
	return cols
}
