package profile

import (
	"strings"
	"testing"

	"github.com/hazyhaar/bomex/bompipe"
)

func candidate(grid [][]string) bompipe.CandidateTable {
	return bompipe.CandidateTable{Grid: grid, Strategy: "text-layer/lattice", Accuracy: 90, Page: 1}
}

func TestApply_GenericPromotionAndSentinels(t *testing.T) {
	// WHAT: Title-block junk above the header is skipped, repeated headers
	// are dropped, and empty cells get their column sentinel.
	// WHY: These three normalizations are the whole point of a profile; they
	// must compose in one pass.
	r := NewRegistry(nil)
	tbl := candidate([][]string{
		{"ACME INDUSTRIES", "", ""},
		{"DRAWING 123-456 REV C", "", ""},
		{"ITEM", "QTY", "DESCRIPTION"},
		{"1", "2", "BOLT"},
		{"2", "", "WASHER"},
		{"ITEM", "QTY", "DESCRIPTION"},
		{"3", "1", ""},
	})

	m, err := r.Apply([]bompipe.CandidateTable{tbl}, "")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	wantCols := []string{"ITEM", "QTY", "DESCRIPTION"}
	if strings.Join(m.Columns, "|") != strings.Join(wantCols, "|") {
		t.Errorf("columns = %v, want %v", m.Columns, wantCols)
	}
	want := [][]string{
		{"1", "2", "BOLT"},
		{"2", "1", "WASHER"}, // empty QTY defaults to 1
		{"3", "1", "N/A"},    // empty description defaults to N/A
	}
	if len(m.Rows) != len(want) {
		t.Fatalf("rows = %d, want %d: %v", len(m.Rows), len(want), m.Rows)
	}
	for i := range want {
		if strings.Join(m.Rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, m.Rows[i], want[i])
		}
	}
}

func TestApply_MergesMultiPageTables(t *testing.T) {
	// WHAT: Tables from several pages stack under the first table's header.
	// WHY: A BOM spanning pages is one logical table.
	r := NewRegistry(nil)
	p1 := candidate([][]string{
		{"ITEM", "QTY", "DESCRIPTION"},
		{"1", "2", "BOLT"},
	})
	p2 := candidate([][]string{
		{"ITEM", "QTY", "DESCRIPTION"},
		{"2", "4", "NUT"},
	})

	m, err := r.Apply([]bompipe.CandidateTable{p1, p2}, "generic")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %v", m.Rows)
	}
	if m.Rows[0][2] != "BOLT" || m.Rows[1][2] != "NUT" {
		t.Errorf("merge order wrong: %v", m.Rows)
	}
}

func TestApply_NoHeaderKeepsFirstRow(t *testing.T) {
	// WHAT: When no row matches the header keywords, the first row serves as
	// the header instead of failing the job.
	// WHY: Unfamiliar layouts still deserve an export the user can fix up.
	r := NewRegistry(nil)
	tbl := candidate([][]string{
		{"POS", "ANZAHL"},
		{"1", "2"},
	})

	m, err := r.Apply([]bompipe.CandidateTable{tbl}, "generic")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Columns[0] != "POS" || len(m.Rows) != 1 {
		t.Errorf("columns = %v rows = %v", m.Columns, m.Rows)
	}
}

func TestApply_NoTables(t *testing.T) {
	// WHAT: Applying a profile to zero tables is an error.
	// WHY: A silent empty export hides an upstream failure.
	r := NewRegistry(nil)
	if _, err := r.Apply(nil, "generic"); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestLookup(t *testing.T) {
	// WHAT: Lookup is case-insensitive and unknown or empty keys fall back
	// to the generic profile.
	// WHY: Customer names arrive from CLI flags and auto-detection in
	// arbitrary casing.
	r := NewRegistry(nil)
	tests := []struct {
		key  string
		want string
	}{
		{"farrell", "farrell"},
		{"FARRELL", "farrell"},
		{" Nel ", "nel"},
		{"", GenericKey},
		{"unknown-customer", GenericKey},
	}
	for _, tt := range tests {
		if got := r.Lookup(tt.key); got.Key != tt.want {
			t.Errorf("Lookup(%q).Key = %q, want %q", tt.key, got.Key, tt.want)
		}
	}
}

func TestDetectCustomer(t *testing.T) {
	// WHAT: Detection keys off body-text vocabulary, case-insensitively, and
	// returns empty for unrecognized documents.
	// WHY: Most users do not know which profile their drawing needs.
	r := NewRegistry(nil)
	if got := r.DetectCustomer("spare parts for Nel Hydrogen electrolyser"); got != "nel" {
		t.Errorf("DetectCustomer = %q, want nel", got)
	}
	if got := r.DetectCustomer("generic pump assembly drawing"); got != "" {
		t.Errorf("DetectCustomer = %q, want empty", got)
	}
}

func TestIsRepeatedHeader(t *testing.T) {
	// WHAT: A row is a repeated header when a majority of cells equal the
	// header, ignoring case and padding.
	// WHY: Partial matches like an item named "DESCRIPTION PLATE" must not
	// wipe out real rows.
	header := []string{"ITEM", "QTY", "DESCRIPTION"}
	if !isRepeatedHeader([]string{"item", " QTY ", "DESCRIPTION"}, header) {
		t.Error("exact repeat not detected")
	}
	if isRepeatedHeader([]string{"1", "2", "DESCRIPTION PLATE"}, header) {
		t.Error("data row misread as header")
	}
	if isRepeatedHeader([]string{"", "", ""}, header) {
		t.Error("blank row misread as header")
	}
}
