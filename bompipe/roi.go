// CLAUDE:SUMMARY Region-of-interest types and image-space to PDF-space coordinate conversion.
package bompipe

import "fmt"

// Region is a user-selected rectangle in image space: origin at the top-left
// of the rendered page, Y increasing downward. Coordinates are in PDF points
// at render scale 1.
type Region struct {
	Page int     `json:"page"` // 1-based
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
}

// Valid reports whether the region is well-formed.
func (r Region) Valid() error {
	if r.Page < 1 {
		return fmt.Errorf("roi: page %d out of range", r.Page)
	}
	if r.X1 <= r.X0 || r.Y1 <= r.Y0 {
		return fmt.Errorf("roi: degenerate rectangle (%g,%g)-(%g,%g)", r.X0, r.Y0, r.X1, r.Y1)
	}
	return nil
}

// PDFRegion is a rectangle in PDF user space: origin at the bottom-left,
// Y increasing upward.
type PDFRegion struct {
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
}

// ToPDF converts an image-space region to PDF space by flipping the Y axis
// around the page height, then expands it by pad points on every side.
// The result is clamped to the page.
func (r Region) ToPDF(pageWidth, pageHeight, pad float64) PDFRegion {
	out := PDFRegion{
		Left:   r.X0 - pad,
		Right:  r.X1 + pad,
		Top:    pageHeight - r.Y0 + pad,
		Bottom: pageHeight - r.Y1 - pad,
	}
	if out.Left < 0 {
		out.Left = 0
	}
	if out.Bottom < 0 {
		out.Bottom = 0
	}
	if out.Right > pageWidth {
		out.Right = pageWidth
	}
	if out.Top > pageHeight {
		out.Top = pageHeight
	}
	return out
}

// Contains reports whether the point (x, y) in PDF space falls inside the region.
func (p PDFRegion) Contains(x, y float64) bool {
	return x >= p.Left && x <= p.Right && y >= p.Bottom && y <= p.Top
}
