// CLAUDE:SUMMARY Sentinel errors and the terminal attempt report for failed extractions.
package bompipe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTables is returned when every strategy, including the OCR fallback,
// failed to produce an accepted table. Use errors.Is to match; the concrete
// value carries an AttemptReport.
var ErrNoTables = errors.New("no accepted tables")

// AttemptReport records what the orchestrator tried before giving up.
type AttemptReport struct {
	Class        Classification `json:"class"`
	Attempts     []Attempt      `json:"attempts"`
	OCRAvailable bool           `json:"ocr_available"`
	OCRApplied   bool           `json:"ocr_applied"`
	OCRForced    bool           `json:"ocr_forced"`
}

// Attempt is one adapter/configuration combination and its outcome.
type Attempt struct {
	Adapter   string `json:"adapter"`
	Config    string `json:"config"`
	Tables    int    `json:"tables"`   // candidates produced
	Accepted  int    `json:"accepted"` // candidates passing validation
	Err       string `json:"err,omitempty"`
	AfterOCR  bool   `json:"after_ocr"`
}

// NoTablesError wraps ErrNoTables with the full attempt trail.
type NoTablesError struct {
	Report AttemptReport
}

func (e *NoTablesError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no accepted tables (class=%s, %d attempts", e.Report.Class, len(e.Report.Attempts))
	if e.Report.OCRApplied {
		sb.WriteString(", after OCR")
	} else if !e.Report.OCRAvailable {
		sb.WriteString(", OCR unavailable")
	}
	sb.WriteString(")")
	return sb.String()
}

func (e *NoTablesError) Unwrap() error { return ErrNoTables }
