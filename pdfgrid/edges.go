// CLAUDE:SUMMARY Ruling-line extraction from pdfium path objects, page borders filtered out.
package pdfgrid

import (
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
)

const (
	borderTolerance   = 20.0 // points from page edge
	fullSpanThreshold = 0.90 // of page dimension
)

// extractEdges walks the page's path objects and returns horizontal and
// vertical ruling lines in top-left origin space. Two-segment paths are
// treated as single lines; longer closed paths contribute their bounding-box
// edges, which covers table frames drawn as rectangles.
func extractEdges(instance pdfium.Pdfium, page references.FPDF_PAGE, pageWidth, pageHeight float64) ([]edge, error) {
	countResp, err := instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return nil, err
	}

	var edges []edge
	for i := 0; i < countResp.Count; i++ {
		objResp, err := instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page:  requests.Page{ByReference: &page},
			Index: i,
		})
		if err != nil {
			continue
		}
		typeResp, err := instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: objResp.PageObject,
		})
		if err != nil || typeResp.Type != enums.FPDF_PAGEOBJ_PATH {
			continue
		}
		boundsResp, err := instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		x0 := float64(boundsResp.Left)
		y0 := pageHeight - float64(boundsResp.Top)
		x1 := float64(boundsResp.Right)
		y1 := pageHeight - float64(boundsResp.Bottom)

		segResp, err := instance.FPDFPath_CountSegments(&requests.FPDFPath_CountSegments{
			PageObject: objResp.PageObject,
		})
		if err != nil || segResp.Count < 2 {
			continue
		}

		if segResp.Count == 2 {
			if e, ok := lineEdge(x0, y0, x1, y1); ok && !isPageBorder(e, pageWidth, pageHeight) {
				edges = append(edges, e)
			}
			continue
		}
		for _, e := range rectEdges(x0, y0, x1, y1) {
			if !isPageBorder(e, pageWidth, pageHeight) {
				edges = append(edges, e)
			}
		}
	}
	return edges, nil
}

// lineEdge classifies a two-point path as horizontal or vertical.
func lineEdge(x0, y0, x1, y1 float64) (edge, bool) {
	width, height := x1-x0, y1-y0
	if height < 2 && width > 1 {
		return edge{x0: x0, y0: y0, x1: x1, y1: y1, horizontal: true}, true
	}
	if width < 2 && height > 1 {
		return edge{x0: x0, y0: y0, x1: x1, y1: y1, horizontal: false}, true
	}
	return edge{}, false
}

func rectEdges(x0, y0, x1, y1 float64) []edge {
	return []edge{
		{x0: x0, y0: y0, x1: x1, y1: y0, horizontal: true},
		{x0: x0, y0: y1, x1: x1, y1: y1, horizontal: true},
		{x0: x0, y0: y0, x1: x0, y1: y1, horizontal: false},
		{x0: x1, y0: y0, x1: x1, y1: y1, horizontal: false},
	}
}

// isPageBorder filters out page frames and full-span decorations so an
// outlined drawing sheet is not mistaken for one giant table cell.
func isPageBorder(e edge, pageWidth, pageHeight float64) bool {
	if e.horizontal {
		if e.y0 < borderTolerance || e.y0 > pageHeight-borderTolerance {
			return true
		}
		return e.length() > pageWidth*fullSpanThreshold
	}
	if e.x0 < borderTolerance || e.x0 > pageWidth-borderTolerance {
		return true
	}
	return e.length() > pageHeight*fullSpanThreshold
}
