// CLAUDE:SUMMARY Strategy adapters — text-layer and geometric configuration ladders over the table engine.
package bompipe

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Adapter is one extraction strategy: an ordered ladder of engine
// configurations walked until a configuration produces at least one grid of
// acceptable size. Configuration failures advance the ladder, they never
// abort the adapter.
type Adapter interface {
	Name() string
	Extract(ctx context.Context, doc Document, region *PDFRegion) ([]CandidateTable, []Attempt, error)
}

// ladderAdapter is the shared walk; the two strategies differ only in their
// ladder and in the geometric structure-repair pass.
type ladderAdapter struct {
	name   string
	engine TableEngine
	ladder []EngineConfig
	repair bool
	cfg    Config
	logger *slog.Logger
}

// NewTextLayerAdapter extracts tables from the embedded text layer. Cheaper
// and more faithful than geometric analysis when a real text layer exists.
func NewTextLayerAdapter(cfg Config) Adapter {
	cfg.defaults()
	return &ladderAdapter{
		name:   "text-layer",
		engine: cfg.Engine,
		cfg:    cfg,
		logger: cfg.Logger,
		ladder: []EngineConfig{
			{Name: "lattice", Mode: ModeLattice, MinRows: 3, MinCols: 2},
			{Name: "stream", Mode: ModeStream, MinRows: 3, MinCols: 2},
			{Name: "auto", Mode: ModeAuto, MinRows: 3, MinCols: 2},
			{Name: "permissive", Mode: ModeStream, MinRows: 2, MinCols: 2, Lenient: true},
		},
	}
}

// NewGeometricAdapter extracts tables from visual structure: ruling lines
// first, then whitespace alignment with progressively looser tolerances.
func NewGeometricAdapter(cfg Config) Adapter {
	cfg.defaults()
	return &ladderAdapter{
		name:   "geometric",
		engine: cfg.Engine,
		repair: true,
		cfg:    cfg,
		logger: cfg.Logger,
		ladder: []EngineConfig{
			{Name: "lattice-strict", Mode: ModeLattice, LineScale: 40, MinAccuracy: 50, MinRows: 3, MinCols: 2},
			{Name: "stream-strict", Mode: ModeStream, EdgeTolerance: 500, MinAccuracy: 30, MinRows: 3, MinCols: 2},
			{Name: "lattice-loose", Mode: ModeLattice, LineScale: 20, MinAccuracy: 20, MinRows: 2, MinCols: 2, Lenient: true},
			{Name: "stream-loose", Mode: ModeStream, EdgeTolerance: 1000, MinAccuracy: 10, MinRows: 2, MinCols: 2, Lenient: true},
		},
	}
}

// newROIAdapter builds a permissive variant of a strategy for region mode:
// the caller picked the rectangle on purpose, so even a single cell is worth
// returning.
func newROIAdapter(name string, cfg Config) Adapter {
	cfg.defaults()
	var ladder []EngineConfig
	switch name {
	case "text-layer":
		ladder = []EngineConfig{
			{Name: "roi-lattice", Mode: ModeLattice, MinRows: 1, MinCols: 1, Lenient: true},
			{Name: "roi-stream", Mode: ModeStream, MinRows: 1, MinCols: 1, Lenient: true},
		}
	default:
		ladder = []EngineConfig{
			{Name: "roi-lattice", Mode: ModeLattice, LineScale: 20, MinRows: 1, MinCols: 1, Lenient: true},
			{Name: "roi-stream", Mode: ModeStream, EdgeTolerance: 1000, MinRows: 1, MinCols: 1, Lenient: true},
		}
	}
	return &ladderAdapter{
		name:   name,
		engine: cfg.Engine,
		ladder: ladder,
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

func (a *ladderAdapter) Name() string { return a.name }

// Extract walks the ladder and returns the candidates of the first rung that
// yields at least one acceptable grid, together with the per-rung attempt
// trail for failure reporting.
func (a *ladderAdapter) Extract(ctx context.Context, doc Document, region *PDFRegion) ([]CandidateTable, []Attempt, error) {
	var attempts []Attempt

	for _, rung := range a.ladder {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		rung.Region = region

		raw, err := a.engine.Tables(ctx, doc.Path, doc.Pages, rung)
		att := Attempt{Adapter: a.name, Config: rung.Name}
		if err != nil {
			att.Err = err.Error()
			attempts = append(attempts, att)
			a.logger.Debug("engine configuration failed", "adapter", a.name, "config", rung.Name, "err", err)
			continue
		}

		candidates := a.filter(raw, rung)
		att.Tables = len(candidates)
		attempts = append(attempts, att)
		if len(candidates) > 0 {
			a.logger.Debug("ladder rung produced tables", "adapter", a.name, "config", rung.Name, "tables", len(candidates))
			return candidates, attempts, nil
		}
	}
	return nil, attempts, nil
}

// filter cleans raw grids and applies the rung's size and accuracy gates.
// In repair mode a grid that fails the column gate, is mostly empty, or has a
// cell that swallowed its row gets one shot at merged-cell repair, and the
// repaired grid is adopted only when it recovers more columns.
func (a *ladderAdapter) filter(raw []RawTable, rung EngineConfig) []CandidateTable {
	var out []CandidateTable
	for _, rt := range raw {
		if rt.Accuracy >= 0 && rung.MinAccuracy > 0 && rt.Accuracy < rung.MinAccuracy {
			continue
		}
		grid := CleanGrid(rt.Grid)
		if len(grid) == 0 {
			continue
		}

		t := CandidateTable{
			Grid:     grid,
			Strategy: a.name + "/" + rung.Name,
			Accuracy: rt.Accuracy,
			Page:     rt.Page,
			Lenient:  rung.Lenient,
		}
		t.PadRows()

		if a.repair && needsColumnRepair(&t, rung.MinCols) {
			// Repair works from the raw cells: cleanup collapses the space
			// runs that mark the swallowed column boundaries.
			if repaired, ok := repairMergedColumns(rt.Grid); ok {
				fixed := CandidateTable{Grid: CleanGrid(repaired)}
				fixed.PadRows()
				if fixed.Cols() > t.Cols() {
					t.Grid = fixed.Grid
				}
			}
		}
		if t.Rows() < rung.MinRows || t.Cols() < rung.MinCols {
			continue
		}
		out = append(out, t)
	}
	return out
}

// needsColumnRepair flags grids that look like swallowed rows: too few
// columns, a mostly empty grid, or one cell holding the bulk of the text.
func needsColumnRepair(t *CandidateTable, minCols int) bool {
	if t.Cols() < minCols {
		return true
	}
	cells, filled := 0, 0
	dominant := false
	for _, row := range t.Grid {
		rowChars, longest := 0, 0
		for _, cell := range row {
			cells++
			n := len(cell)
			if n == 0 {
				continue
			}
			filled++
			rowChars += n
			if n > longest {
				longest = n
			}
		}
		// A long cell carrying over two thirds of its row usually swallowed
		// the neighbouring columns.
		if longest >= 20 && longest*3 > rowChars*2 {
			dominant = true
		}
	}
	if cells == 0 || filled == 0 {
		return false
	}
	if float64(filled)/float64(cells) < 0.25 {
		return true
	}
	return dominant
}

// mergedRowRe matches a cell that swallowed a whole BOM row: a short item
// number followed by the rest of the line.
var mergedRowRe = regexp.MustCompile(`^(\d{1,3})\s+(\S.*)$`)

// repairMergedColumns splits single-column grids whose cells start with an
// item-number prefix, a common lattice failure when the vertical rulings are
// too faint to detect. Returns false when fewer than half the rows match.
func repairMergedColumns(grid [][]string) ([][]string, bool) {
	matched := 0
	repaired := make([][]string, len(grid))
	for i, row := range grid {
		cell := strings.TrimSpace(strings.Join(row, " "))
		if m := mergedRowRe.FindStringSubmatch(cell); m != nil {
			repaired[i] = append([]string{m[1]}, splitRun(m[2])...)
			matched++
		} else {
			repaired[i] = []string{cell}
		}
	}
	if matched*2 < len(grid) {
		return nil, false
	}
	return repaired, true
}

var spaceRunRe = regexp.MustCompile(`\s{2,}`)

// splitRun breaks the remainder of a merged row on runs of two or more
// spaces, the only column separator left once rulings are gone.
func splitRun(s string) []string {
	parts := spaceRunRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{s}
	}
	return out
}

// attemptLabel is a compact human-readable form used in log lines.
func attemptLabel(a Attempt) string {
	if a.Err != "" {
		return fmt.Sprintf("%s/%s: %s", a.Adapter, a.Config, a.Err)
	}
	return fmt.Sprintf("%s/%s: %d tables", a.Adapter, a.Config, a.Tables)
}
