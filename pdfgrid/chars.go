// CLAUDE:SUMMARY Positioned word extraction from the pdfium text layer.
package pdfgrid

import (
	"fmt"
	"math"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
)

// extractWords reads every character of a page and groups runs separated by
// whitespace or large horizontal gaps into words. Coordinates come back in
// top-left origin space (pdfium reports bottom-left; the Y axis is flipped
// against the page height).
func extractWords(instance pdfium.Pdfium, page references.FPDF_PAGE, pageHeight float64) ([]word, error) {
	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return nil, fmt.Errorf("load text page: %w", err)
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, fmt.Errorf("count chars: %w", err)
	}
	if charCount.Count == 0 {
		return nil, nil
	}

	type char struct {
		r              rune
		x0, y0, x1, y1 float64
	}
	chars := make([]char, 0, charCount.Count)

	for i := 0; i < charCount.Count; i++ {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}
		box, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}
		chars = append(chars, char{
			r:  rune(unicodeRes.Unicode),
			x0: box.Left,
			y0: pageHeight - box.Top,
			x1: box.Right,
			y1: pageHeight - box.Bottom,
		})
	}
	if len(chars) == 0 {
		return nil, nil
	}

	// Average glyph width drives the implicit word-gap threshold for text
	// layers that carry no space characters.
	var totalWidth float64
	for _, c := range chars {
		totalWidth += c.x1 - c.x0
	}
	gapThreshold := (totalWidth / float64(len(chars))) * 1.5

	var words []word
	var cur []char
	flush := func() {
		if len(cur) == 0 {
			return
		}
		w := word{x0: cur[0].x0, y0: cur[0].y0, x1: cur[0].x1, y1: cur[0].y1}
		runes := make([]rune, len(cur))
		for i, c := range cur {
			runes[i] = c.r
			w.x0 = math.Min(w.x0, c.x0)
			w.y0 = math.Min(w.y0, c.y0)
			w.x1 = math.Max(w.x1, c.x1)
			w.y1 = math.Max(w.y1, c.y1)
		}
		w.text = string(runes)
		words = append(words, w)
		cur = nil
	}

	for i, c := range chars {
		switch c.r {
		case ' ', '\t', '\n', '\r':
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			sameLine := math.Abs(c.y0-prev.y0) < (prev.y1-prev.y0)*0.8
			if !sameLine || c.x0-prev.x1 > gapThreshold {
				flush()
			}
		}
		cur = append(cur, c)
		if i == len(chars)-1 {
			flush()
		}
	}
	return words, nil
}
