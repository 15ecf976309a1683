// CLAUDE:SUMMARY Pure-geometry grid builders — row clustering, whitespace columns, ruling-line cells.
package pdfgrid

import (
	"math"
	"sort"
	"strings"
)

// word is a positioned text token in top-left origin page space.
type word struct {
	text           string
	x0, y0, x1, y1 float64
}

func (w word) cx() float64 { return (w.x0 + w.x1) / 2 }
func (w word) cy() float64 { return (w.y0 + w.y1) / 2 }

// edge is a ruling line in top-left origin page space.
type edge struct {
	x0, y0, x1, y1 float64
	horizontal     bool
}

func (e edge) length() float64 {
	if e.horizontal {
		return e.x1 - e.x0
	}
	return e.y1 - e.y0
}

// clusterRows groups words into visual lines by vertical center. tol is the
// maximum center distance to join a line; pass 0 to derive it from the
// median word height.
func clusterRows(words []word, tol float64) [][]word {
	if len(words) == 0 {
		return nil
	}
	if tol <= 0 {
		tol = medianHeight(words) * 0.6
		if tol <= 0 {
			tol = 3
		}
	}

	sorted := make([]word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].cy() < sorted[j].cy() })

	var rows [][]word
	var current []word
	var rowCy float64
	for _, w := range sorted {
		if len(current) == 0 || math.Abs(w.cy()-rowCy) <= tol {
			current = append(current, w)
			// Running mean keeps slowly drifting baselines in one row.
			rowCy += (w.cy() - rowCy) / float64(len(current))
			continue
		}
		rows = append(rows, sortByX(current))
		current = []word{w}
		rowCy = w.cy()
	}
	if len(current) > 0 {
		rows = append(rows, sortByX(current))
	}
	return rows
}

func sortByX(row []word) []word {
	sort.Slice(row, func(i, j int) bool { return row[i].x0 < row[j].x0 })
	return row
}

func medianHeight(words []word) float64 {
	hs := make([]float64, len(words))
	for i, w := range words {
		hs[i] = w.y1 - w.y0
	}
	sort.Float64s(hs)
	return hs[len(hs)/2]
}

// buildStreamGrid infers columns from whitespace rivers: x intervals covered
// by no word in any row become column separators. edgeTol loosens interval
// merging for poorly aligned scans.
func buildStreamGrid(words []word, edgeTol float64) [][]string {
	rows := clusterRows(words, 0)
	if len(rows) == 0 {
		return nil
	}

	slack := 1.0
	if edgeTol > 0 {
		slack += edgeTol / 500
	}

	// Project every word onto the x axis and merge overlapping intervals.
	type span struct{ lo, hi float64 }
	var spans []span
	for _, w := range words {
		spans = append(spans, span{w.x0 - slack, w.x1 + slack})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })

	var merged []span
	for _, s := range spans {
		if len(merged) > 0 && s.lo <= merged[len(merged)-1].hi {
			if s.hi > merged[len(merged)-1].hi {
				merged[len(merged)-1].hi = s.hi
			}
			continue
		}
		merged = append(merged, s)
	}
	if len(merged) < 2 {
		// No whitespace river: single column of whole lines.
		grid := make([][]string, len(rows))
		for i, row := range rows {
			grid[i] = []string{joinWords(row)}
		}
		return grid
	}

	// Column k spans merged[k]; assign by word center.
	grid := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(merged))
		for _, w := range row {
			col := 0
			for k, m := range merged {
				if w.cx() >= m.lo && w.cx() <= m.hi {
					col = k
					break
				}
			}
			if cells[col] != "" {
				cells[col] += " "
			}
			cells[col] += w.text
		}
		grid[i] = cells
	}
	return grid
}

// buildLatticeGrid bins words into the cells formed by ruling lines. Lines
// shorter than minLineLen are ignored as decoration. Returns nil when fewer
// than two usable lines exist in either direction.
func buildLatticeGrid(words []word, edges []edge, minLineLen float64) [][]string {
	var ys, xs []float64
	for _, e := range edges {
		if e.length() < minLineLen {
			continue
		}
		if e.horizontal {
			ys = append(ys, (e.y0+e.y1)/2)
		} else {
			xs = append(xs, (e.x0+e.x1)/2)
		}
	}
	ys = clusterPositions(ys, 3)
	xs = clusterPositions(xs, 3)
	if len(ys) < 2 || len(xs) < 2 {
		return nil
	}

	nRows, nCols := len(ys)-1, len(xs)-1
	grid := make([][]string, nRows)
	for i := range grid {
		grid[i] = make([]string, nCols)
	}

	for _, w := range words {
		r := bin(ys, w.cy())
		c := bin(xs, w.cx())
		if r < 0 || c < 0 {
			continue
		}
		if grid[r][c] != "" {
			grid[r][c] += " "
		}
		grid[r][c] += w.text
	}
	return grid
}

// clusterPositions collapses nearby line coordinates into sorted unique
// boundaries.
func clusterPositions(ps []float64, tol float64) []float64 {
	if len(ps) == 0 {
		return nil
	}
	sort.Float64s(ps)
	out := []float64{ps[0]}
	for _, p := range ps[1:] {
		if p-out[len(out)-1] > tol {
			out = append(out, p)
		}
	}
	return out
}

// bin returns the interval index of v in sorted boundaries, or -1 when v
// falls outside.
func bin(bounds []float64, v float64) int {
	if v < bounds[0] || v > bounds[len(bounds)-1] {
		return -1
	}
	for i := 0; i < len(bounds)-1; i++ {
		if v <= bounds[i+1] {
			return i
		}
	}
	return len(bounds) - 2
}

// gridAccuracy is the share of words that landed in a non-empty cell,
// scaled to 0-100.
func gridAccuracy(grid [][]string, totalWords int) float64 {
	if totalWords == 0 {
		return 0
	}
	placed := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell != "" {
				placed += len(strings.Fields(cell))
			}
		}
	}
	acc := 100 * float64(placed) / float64(totalWords)
	if acc > 100 {
		acc = 100
	}
	return acc
}

// textToGrid converts recognized plain text into a grid: one row per line,
// columns split on runs of two or more spaces.
func textToGrid(text string) [][]string {
	var grid [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		var cells []string
		for _, c := range splitOnSpaceRuns(line) {
			cells = append(cells, strings.TrimSpace(c))
		}
		grid = append(grid, cells)
	}
	return grid
}

func splitOnSpaceRuns(line string) []string {
	var parts []string
	var sb strings.Builder
	spaces := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			spaces++
			continue
		}
		if spaces >= 2 && sb.Len() > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
		} else if spaces == 1 && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		spaces = 0
		sb.WriteRune(r)
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}

func joinWords(row []word) string {
	parts := make([]string, len(row))
	for i, w := range row {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}
