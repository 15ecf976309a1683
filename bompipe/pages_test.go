package bompipe

import "testing"

func TestParsePages_Ranges(t *testing.T) {
	// WHAT: Mixed single pages and ranges expand into an ordered set.
	// WHY: The CLI page selector is the main entry into partial extraction.
	pages, err := ParsePages("1-3,5,7-9")
	if err != nil {
		t.Fatalf("ParsePages: %v", err)
	}
	want := []int{1, 2, 3, 5, 7, 8, 9}
	if len(pages) != len(want) {
		t.Fatalf("got %v, want %v", pages, want)
	}
	for i, p := range want {
		if pages[i] != p {
			t.Fatalf("got %v, want %v", pages, want)
		}
	}
}

func TestParsePages_Overlap(t *testing.T) {
	// WHAT: Overlapping terms deduplicate.
	// WHY: "1-3,2" must not extract page 2 twice.
	pages, err := ParsePages("1-3,2,3-4")
	if err != nil {
		t.Fatalf("ParsePages: %v", err)
	}
	if got := pages.String(); got != "1,2,3,4" {
		t.Errorf("got %q, want 1,2,3,4", got)
	}
}

func TestParsePages_All(t *testing.T) {
	// WHAT: "all", empty, and whitespace select every page.
	// WHY: nil PageSet is the whole-document sentinel downstream.
	for _, expr := range []string{"all", "ALL", "", "  "} {
		pages, err := ParsePages(expr)
		if err != nil {
			t.Fatalf("ParsePages(%q): %v", expr, err)
		}
		if pages != nil {
			t.Errorf("ParsePages(%q) = %v, want nil", expr, pages)
		}
		if !pages.Contains(9999) {
			t.Errorf("nil PageSet must contain every page")
		}
	}
}

func TestParsePages_Invalid(t *testing.T) {
	// WHAT: Descending ranges, zero/negative pages, and non-numeric terms fail.
	// WHY: Silent misparses would extract the wrong pages.
	for _, expr := range []string{"5-3", "-1", "a-b", "0", "1,,3", "1-", "2x"} {
		if _, err := ParsePages(expr); err == nil {
			t.Errorf("ParsePages(%q): expected error", expr)
		}
	}
}

func TestPageSet_Contains(t *testing.T) {
	// WHAT: Contains is exact on an explicit set.
	// WHY: Engines filter pages with it.
	pages, _ := ParsePages("2,4")
	if pages.Contains(3) {
		t.Error("3 should not be in {2,4}")
	}
	if !pages.Contains(4) {
		t.Error("4 should be in {2,4}")
	}
}
