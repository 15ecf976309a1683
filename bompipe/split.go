// CLAUDE:SUMMARY Dual-column BOM splitter — restacks side-by-side half tables into one tall table.
package bompipe

import "strings"

// Drawings that print the BOM in two side-by-side halves yield one wide grid
// with the header repeated: ITEM MFG MFGPART DESCRIPTION QTY | ITEM MFG ...
// MaybeSplit detects that layout and restacks it, left half first.

const (
	splitGroupWidth   = 5
	splitMinCols      = 8
	splitMinUsableCol = 4
)

// MaybeSplit returns the restacked table when the dual-column layout is
// detected, and the input unchanged otherwise. The operation never triggers
// on its own output: the restacked table has a single item column.
func MaybeSplit(t CandidateTable) CandidateTable {
	if t.Rows() < 2 || t.Cols() < splitMinCols {
		return t
	}

	header := t.Grid[0]
	first, second := itemColumns(header)
	if first < 0 || second < 0 {
		return t
	}

	left := clipGroup(header, first)
	right := clipGroup(header, second)
	if len(left) < splitMinUsableCol || len(right) < splitMinUsableCol {
		return t
	}

	var rows [][]string
	rows = append(rows, extractGroup(t.Grid, first, len(left))...)
	rows = append(rows, extractGroup(t.Grid, second, len(right))...)
	if len(rows) == 0 {
		return t
	}

	out := CandidateTable{
		Strategy: t.Strategy,
		Accuracy: t.Accuracy,
		Page:     t.Page,
	}
	out.Grid = append([][]string{headerSlice(header, first, len(left))}, rows...)
	return out
}

// itemColumns returns the indices of the first two header cells that match
// the item concept, or (-1, -1) when fewer than two exist.
func itemColumns(header []string) (int, int) {
	first, second := -1, -1
	for i, cell := range header {
		if !isItemHeader(cell) {
			continue
		}
		if first < 0 {
			first = i
		} else if second < 0 && i >= first+splitGroupWidth {
			second = i
		}
	}
	if second < 0 {
		return -1, -1
	}
	return first, second
}

func isItemHeader(cell string) bool {
	norm := normalizeHeader(cell)
	if norm == "" {
		return false
	}
	for _, name := range headerSynonyms["item"] {
		if headerMatches(norm, name) {
			return true
		}
	}
	return false
}

// clipGroup returns the header cells of the group starting at col, clipped
// to the row end and to the fixed group width.
func clipGroup(header []string, col int) []string {
	end := col + splitGroupWidth
	if end > len(header) {
		end = len(header)
	}
	return header[col:end]
}

func headerSlice(header []string, col, width int) []string {
	out := make([]string, width)
	copy(out, header[col:col+width])
	return out
}

// extractGroup pulls the body rows of one half, skipping rows whose item
// cell is empty. Continuation rows without an item number belong to the row
// above and carry no standalone meaning after the restack.
func extractGroup(grid [][]string, col, width int) [][]string {
	var rows [][]string
	for _, row := range grid[1:] {
		if col >= len(row) {
			continue
		}
		end := col + width
		if end > len(row) {
			end = len(row)
		}
		cells := make([]string, width)
		copy(cells, row[col:end])
		if strings.TrimSpace(cells[0]) == "" {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}
