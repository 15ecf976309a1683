// CLAUDE:SUMMARY Configuration struct and defaults for the BOM extraction pipeline.
package bompipe

import (
	"log/slog"
	"time"
)

// Config configures the extraction pipeline.
type Config struct {
	// Engine supplies raw tables for both strategy adapters.
	Engine TableEngine `json:"-" yaml:"-"`

	// OCR produces a derived searchable PDF. Nil disables the OCR fallback.
	OCR OCREngine `json:"-" yaml:"-"`

	// Classifier decides text vs image. Nil uses the pdfcpu-backed default.
	Classifier DocumentClassifier `json:"-" yaml:"-"`

	// ClassifyPages is how many leading pages the classifier samples (default: 3).
	ClassifyPages int `json:"classify_pages" yaml:"classify_pages"`

	// ClassifyMinChars is the accumulated character count above which a
	// document is classified as text (default: 100).
	ClassifyMinChars int `json:"classify_min_chars" yaml:"classify_min_chars"`

	// OCRTimeout bounds a single OCR pass (default: 10 minutes).
	OCRTimeout time.Duration `json:"ocr_timeout" yaml:"ocr_timeout"`

	// TempDir is where OCR working directories are created (default: os.TempDir).
	TempDir string `json:"temp_dir" yaml:"temp_dir"`

	// ROIPadding expands a region of interest before extraction, in PDF
	// points (default: 5).
	ROIPadding float64 `json:"roi_padding" yaml:"roi_padding"`

	// ROIExpandedPadding is the padding used on the second ROI attempt when
	// the first finds nothing (default: 20).
	ROIExpandedPadding float64 `json:"roi_expanded_padding" yaml:"roi_expanded_padding"`

	// MaxTableRows and MaxTableCols reject absurdly large extraction
	// artifacts (defaults: 200, 50).
	MaxTableRows int `json:"max_table_rows" yaml:"max_table_rows"`
	MaxTableCols int `json:"max_table_cols" yaml:"max_table_cols"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.ClassifyPages <= 0 {
		c.ClassifyPages = 3
	}
	if c.ClassifyMinChars <= 0 {
		c.ClassifyMinChars = 100
	}
	if c.OCRTimeout <= 0 {
		c.OCRTimeout = 10 * time.Minute
	}
	if c.ROIPadding <= 0 {
		c.ROIPadding = 5
	}
	if c.ROIExpandedPadding <= 0 {
		c.ROIExpandedPadding = 20
	}
	if c.MaxTableRows <= 0 {
		c.MaxTableRows = 200
	}
	if c.MaxTableCols <= 0 {
		c.MaxTableCols = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
