// CLAUDE:SUMMARY Customer format profiles — registry, header promotion, renames, row filtering, sentinel fill.
// Package profile normalizes accepted BOM tables into a canonical merged
// table according to per-customer formatting rules.
//
// A Profile is pure data plus an optional post-transform; all customer
// differences are expressed through the same ordered steps: dual-column
// split, header-row promotion, column renames, reject-row filtering, and
// sentinel fill. Unknown customers fall back to the generic profile.
package profile

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/bomex/bompipe"
)

// Profile holds the formatting rules for one customer.
type Profile struct {
	// Key is the case-insensitive lookup name.
	Key string `yaml:"key"`

	// HeaderKeywords drive header-row promotion: the first scanned row
	// matching at least two keywords becomes the column header.
	HeaderKeywords []string `yaml:"header_keywords"`

	// HeaderAnchor, when set, short-circuits the keyword scan: the header is
	// the first row containing this phrase in any cell.
	HeaderAnchor string `yaml:"header_anchor,omitempty"`

	// Rename maps promoted header names to canonical ones.
	Rename map[string]string `yaml:"rename,omitempty"`

	// SplitDualColumn enables the side-by-side layout restack before any
	// other step.
	SplitDualColumn bool `yaml:"split_dual_column,omitempty"`

	// RejectKeywords drop body rows containing any of these phrases.
	RejectKeywords []string `yaml:"reject_keywords,omitempty"`

	// ForceOCR requests an aggressive OCR pass for this customer's drawings.
	ForceOCR bool `yaml:"force_ocr,omitempty"`

	// HeaderScanRows bounds the promotion scan (default 10).
	HeaderScanRows int `yaml:"header_scan_rows,omitempty"`

	// DetectKeywords identify this customer from document body text.
	DetectKeywords []string `yaml:"detect_keywords,omitempty"`

	// transform is an optional customer-specific post step, set only by
	// built-in profiles.
	transform func(*bompipe.MergedTable)
}

const (
	// GenericKey is the fallback profile.
	GenericKey = "generic"

	defaultHeaderScanRows = 10
	naSentinel            = "N/A"
)

// Registry holds the loaded profiles. Immutable after construction and any
// LoadFile calls, and safe to share across pipelines afterwards.
type Registry struct {
	profiles map[string]*Profile
	logger   *slog.Logger
}

// NewRegistry creates a Registry seeded with the built-in profiles.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{profiles: make(map[string]*Profile), logger: logger}
	for _, p := range builtins() {
		r.profiles[strings.ToLower(p.Key)] = p
	}
	return r
}

// Lookup returns the profile for key, or the generic profile when the key is
// empty or unknown. Lookup is case-insensitive.
func (r *Registry) Lookup(key string) *Profile {
	if key != "" {
		if p, ok := r.profiles[strings.ToLower(strings.TrimSpace(key))]; ok {
			return p
		}
		r.logger.Debug("unknown customer profile, using generic", "key", key)
	}
	return r.profiles[GenericKey]
}

// Keys returns the registered profile keys in no particular order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.profiles))
	for k := range r.profiles {
		keys = append(keys, k)
	}
	return keys
}

// DetectCustomer scans document body text for the detection vocabulary of
// each registered profile and returns the first matching key, or "".
func (r *Registry) DetectCustomer(text string) string {
	upper := strings.ToUpper(text)
	for key, p := range r.profiles {
		for _, kw := range p.DetectKeywords {
			if kw != "" && strings.Contains(upper, strings.ToUpper(kw)) {
				r.logger.Debug("customer auto-detected", "key", key, "keyword", kw)
				return key
			}
		}
	}
	return ""
}

// Apply normalizes the accepted tables under the named profile and merges
// them into one canonical table.
func (r *Registry) Apply(tables []bompipe.CandidateTable, key string) (*bompipe.MergedTable, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("profile apply: no tables")
	}
	p := r.Lookup(key)

	merged := &bompipe.MergedTable{}
	for _, t := range tables {
		if p.SplitDualColumn {
			t = bompipe.MaybeSplit(t)
		}
		t.PadRows()

		header, body, ok := p.promoteHeader(t.Grid)
		if !ok {
			r.logger.Debug("no header row found, keeping first row", "strategy", t.Strategy, "page", t.Page)
			header, body = t.Grid[0], t.Grid[1:]
		}

		if len(merged.Columns) == 0 {
			merged.Columns = p.renameColumns(header)
		}
		for _, row := range body {
			if p.rejectRow(row) || isRepeatedHeader(row, header) {
				continue
			}
			merged.Rows = append(merged.Rows, fitRow(row, len(merged.Columns)))
		}
	}
	if len(merged.Columns) == 0 {
		return nil, fmt.Errorf("profile apply: no usable header")
	}

	fillSentinels(merged)
	if p.transform != nil {
		p.transform(merged)
	}
	return merged, nil
}

// promoteHeader scans the leading rows for the real column header. Engines
// routinely capture title-block junk above the table; the keyword scan skips
// past it.
func (p *Profile) promoteHeader(grid [][]string) (header []string, body [][]string, ok bool) {
	scan := p.HeaderScanRows
	if scan <= 0 {
		scan = defaultHeaderScanRows
	}
	if scan > len(grid) {
		scan = len(grid)
	}

	for i := 0; i < scan; i++ {
		if p.HeaderAnchor != "" {
			if rowContains(grid[i], p.HeaderAnchor) {
				// The anchor row is a banner; the header is the next row.
				if i+1 < len(grid) {
					return grid[i+1], grid[i+2:], true
				}
				return nil, nil, false
			}
			continue
		}
		if countKeywordHits(grid[i], p.HeaderKeywords) >= 2 {
			return grid[i], grid[i+1:], true
		}
	}
	return nil, nil, false
}

func (p *Profile) renameColumns(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		for from, to := range p.Rename {
			if strings.EqualFold(name, from) {
				name = to
				break
			}
		}
		out[i] = name
	}
	return out
}

func (p *Profile) rejectRow(row []string) bool {
	for _, kw := range p.RejectKeywords {
		if kw != "" && rowContains(row, kw) {
			return true
		}
	}
	return false
}

func rowContains(row []string, phrase string) bool {
	phrase = strings.ToUpper(phrase)
	for _, cell := range row {
		if strings.Contains(strings.ToUpper(cell), phrase) {
			return true
		}
	}
	return false
}

func countKeywordHits(row []string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if rowContains(row, kw) {
			hits++
		}
	}
	return hits
}

// isRepeatedHeader drops header rows that recur mid-table when a BOM spans
// pages.
func isRepeatedHeader(row, header []string) bool {
	if len(header) == 0 {
		return false
	}
	same := 0
	for i, cell := range row {
		if i < len(header) && strings.EqualFold(strings.TrimSpace(cell), strings.TrimSpace(header[i])) && strings.TrimSpace(cell) != "" {
			same++
		}
	}
	return same*2 > len(header)
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// fillSentinels replaces empty cells: quantity columns default to 1, cost
// columns to 0, everything else to N/A.
func fillSentinels(t *bompipe.MergedTable) {
	for c, col := range t.Columns {
		fill := naSentinel
		upper := strings.ToUpper(col)
		switch {
		case strings.Contains(upper, "QTY") || strings.Contains(upper, "QUANT"):
			fill = "1"
		case strings.Contains(upper, "COST") || strings.Contains(upper, "PRICE"):
			fill = "0"
		}
		for _, row := range t.Rows {
			if c < len(row) && strings.TrimSpace(row[c]) == "" {
				row[c] = fill
			}
		}
	}
}
