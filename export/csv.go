// CLAUDE:SUMMARY CSV export of the merged BOM and per-table audit files.
// Package export writes extraction results to disk: the merged canonical
// table plus one audit file per accepted candidate, so a reviewer can see
// what each strategy produced before profile normalization.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/bomex/bompipe"
)

// WriteMerged writes the normalized table to path as CSV, header first.
func WriteMerged(path string, t *bompipe.MergedTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// WriteTables writes each accepted candidate to dir as
// <base>_table<N>_p<page>.csv and returns the created paths.
func WriteTables(dir, base string, tables []bompipe.CandidateTable) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	var paths []string
	for i, t := range tables {
		name := fmt.Sprintf("%s_table%d_p%d.csv", base, i+1, t.Page)
		path := filepath.Join(dir, name)
		if err := writeGrid(path, t.Grid); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeGrid(path string, grid [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range grid {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
