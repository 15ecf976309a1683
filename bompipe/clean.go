// CLAUDE:SUMMARY Grid cleanup pass — whitespace normalization, glyph stripping, empty row/column removal.
package bompipe

import (
	"strings"
	"unicode"
)

// CleanGrid normalizes an extracted grid in place of the engine's raw output:
// cells are whitespace-collapsed and stripped of non-printable glyphs, then
// fully empty rows and columns are dropped. Returns a new grid.
func CleanGrid(grid [][]string) [][]string {
	if len(grid) == 0 {
		return nil
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	cleaned := make([][]string, 0, len(grid))
	for _, row := range grid {
		out := make([]string, width)
		empty := true
		for j := 0; j < width; j++ {
			var cell string
			if j < len(row) {
				cell = cleanCell(row[j])
			}
			out[j] = cell
			if cell != "" {
				empty = false
			}
		}
		if !empty {
			cleaned = append(cleaned, out)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	// Drop columns that are empty in every surviving row.
	keep := make([]bool, width)
	kept := 0
	for j := 0; j < width; j++ {
		for _, row := range cleaned {
			if row[j] != "" {
				keep[j] = true
				kept++
				break
			}
		}
	}
	if kept == width {
		return cleaned
	}
	for i, row := range cleaned {
		out := make([]string, 0, kept)
		for j, ok := range keep {
			if ok {
				out = append(out, row[j])
			}
		}
		cleaned[i] = out
	}
	return cleaned
}

// cleanCell collapses whitespace runs and removes control and replacement
// glyphs that OCR and broken font encodings leave behind.
func cleanCell(s string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case r == 0xFFFD, r >= 0xE000 && r <= 0xF8FF, r < 0x20:
			// skip
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
