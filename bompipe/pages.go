// CLAUDE:SUMMARY Page-range expression parser — "1-3,5,7-9" or "all" into an ordered PageSet.
package bompipe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageSet is an ordered set of 1-based page numbers. A nil PageSet means
// all pages.
type PageSet []int

// Contains reports whether page is in the set. A nil set contains every page.
func (s PageSet) Contains(page int) bool {
	if s == nil {
		return true
	}
	i := sort.SearchInts(s, page)
	return i < len(s) && s[i] == page
}

func (s PageSet) String() string {
	if s == nil {
		return "all"
	}
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// ParsePages parses a page-range expression into a PageSet.
//
// Grammar: comma-separated terms, each either a single page ("5") or an
// inclusive range ("7-9"). Pages are 1-based. "all" (or empty) selects
// every page. Descending ranges, zero or negative pages, and non-numeric
// terms are rejected.
func ParsePages(expr string) (PageSet, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "all") {
		return nil, nil
	}

	seen := make(map[int]bool)
	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("page range %q: empty term", expr)
		}
		lo, hi, err := parseTerm(term)
		if err != nil {
			return nil, fmt.Errorf("page range %q: %w", expr, err)
		}
		for p := lo; p <= hi; p++ {
			seen[p] = true
		}
	}

	pages := make(PageSet, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

func parseTerm(term string) (lo, hi int, err error) {
	if i := strings.IndexByte(term, '-'); i >= 0 {
		lo, err = parsePage(term[:i])
		if err != nil {
			return 0, 0, err
		}
		hi, err = parsePage(term[i+1:])
		if err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("descending range %q", term)
		}
		return lo, hi, nil
	}
	lo, err = parsePage(term)
	return lo, lo, err
}

func parsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing page number")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page %d out of range (pages are 1-based)", n)
	}
	return n, nil
}
