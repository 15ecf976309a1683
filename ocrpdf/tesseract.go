// CLAUDE:SUMMARY Direct tesseract region recognizer via gosseract — block mode with single-line fallback.
package ocrpdf

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer performs direct OCR on rendered page images. It satisfies the
// pdfgrid.TextRecognizer boundary and is the fallback when ocrmypdf is not
// installed: no derived PDF, just text for the region at hand.
type Recognizer struct {
	// Language is the tesseract language pack (default: "eng").
	Language string

	// Whitelist restricts recognition to the given characters. Empty means
	// no restriction.
	Whitelist string
}

// NewRecognizer returns a Recognizer with defaults suited to BOM tables.
func NewRecognizer() *Recognizer {
	return &Recognizer{Language: "eng"}
}

// Recognize OCRs a PNG image. It tries uniform-block segmentation first,
// which keeps table rows intact, and retries in single-line mode when the
// block pass comes back empty.
func (r *Recognizer) Recognize(png []byte) (string, error) {
	text, err := r.recognize(png, gosseract.PSM_SINGLE_BLOCK)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		text, err = r.recognize(png, gosseract.PSM_SINGLE_LINE)
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(text, "\n"), nil
}

func (r *Recognizer) recognize(png []byte, psm gosseract.PageSegMode) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	lang := r.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("%w: %s", ErrLanguageMissing, lang)
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("set psm: %w", err)
	}
	// Interword spacing is the only column signal a rasterized table has.
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return "", fmt.Errorf("set variable: %w", err)
	}
	if r.Whitelist != "" {
		if err := client.SetWhitelist(r.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}

	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}
