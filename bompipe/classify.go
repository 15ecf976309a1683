// CLAUDE:SUMMARY PDF type classifier — samples leading pages via pdfcpu and decides text vs image.
package bompipe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DocumentClassifier decides whether a PDF carries a usable text layer.
type DocumentClassifier interface {
	Classify(ctx context.Context, path string) Classification
}

// Classifier is the pdfcpu-backed DocumentClassifier.
type Classifier struct {
	cfg    Config
	logger interface {
		Debug(msg string, args ...any)
	}
}

// NewClassifier creates a Classifier with the given configuration.
func NewClassifier(cfg Config) *Classifier {
	cfg.defaults()
	return &Classifier{cfg: cfg, logger: cfg.Logger}
}

// Classify samples the first ClassifyPages pages of the document's text
// layer. More than ClassifyMinChars accumulated characters means ClassText.
// Any read or parse error also yields ClassText: the text-layer strategy is
// the cheaper first attempt, and it fails fast on a truly scanned file.
func (c *Classifier) Classify(ctx context.Context, path string) Classification {
	if err := ctx.Err(); err != nil {
		return ClassText
	}
	text, err := SampleText(path, c.cfg.ClassifyPages)
	if err != nil {
		c.logger.Debug("classifier falling back to text", "path", path, "err", err)
		return ClassText
	}
	n := len([]rune(strings.TrimSpace(text)))
	c.logger.Debug("classified document", "path", path, "chars", n)
	if n > c.cfg.ClassifyMinChars {
		return ClassText
	}
	return ClassImage
}

// SampleText extracts the text layer of the first maxPages pages via pdfcpu
// content streams. It is a coarse sample for classification and customer
// auto-detection, not a layout-faithful extraction.
func SampleText(path string, maxPages int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	limit := pdfCtx.PageCount
	if maxPages > 0 && maxPages < limit {
		limit = maxPages
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= limit; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(streamText(data))
	}
	return sb.String(), nil
}

// PageSize returns the width and height of a 1-based page in PDF points.
func PageSize(path string, page int) (w, h float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	if page < 1 || page > pdfCtx.PageCount {
		return 0, 0, fmt.Errorf("page %d out of range (1-%d)", page, pdfCtx.PageCount)
	}
	dims, err := pdfCtx.PageDims()
	if err != nil {
		return 0, 0, fmt.Errorf("page dims: %w", err)
	}
	d := dims[page-1]
	return d.Width, d.Height, nil
}

// pdfLiteralRe matches PDF string literals: (text here)
var pdfLiteralRe = regexp.MustCompile(`\(([^)]*)\)`)

// streamText pulls show-text operands (Tj, TJ, ') out of a raw content stream.
func streamText(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		showText := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if !showText {
			if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) || bytes.Equal(line, []byte("T*")) {
				sb.WriteByte(' ')
			}
			continue
		}
		for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
			sb.WriteString(decodeLiteral(m[1]))
		}
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}

// decodeLiteral handles the escape sequences of a PDF string literal.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}
