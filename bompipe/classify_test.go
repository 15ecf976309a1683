package bompipe

import (
	"strings"
	"testing"
)

func TestStreamText_ShowTextOperators(t *testing.T) {
	// WHAT: Tj, TJ, and ' operands are collected; positioning operators
	// become separators.
	// WHY: Classification counts characters from exactly these operators.
	stream := []byte("BT\n(ITEM) Tj\n[(QTY) -120 (DESCRIPTION)] TJ\n(PHOENIX) '\nET\n")
	got := streamText(stream)
	for _, want := range []string{"ITEM", "QTY", "DESCRIPTION", "PHOENIX"} {
		if !strings.Contains(got, want) {
			t.Errorf("streamText missing %q in %q", want, got)
		}
	}
}

func TestStreamText_IgnoresNonText(t *testing.T) {
	// WHAT: Graphics operators contribute nothing.
	// WHY: A scanned page full of path operators must classify as image.
	stream := []byte("0 0 m\n612 0 l\nS\n0.5 w\nre f\n")
	if got := streamText(stream); got != "" {
		t.Errorf("streamText = %q, want empty", got)
	}
}

func TestDecodeLiteral_Escapes(t *testing.T) {
	// WHAT: Standard escapes and octal sequences decode.
	// WHY: Part numbers contain parentheses and PDF writers escape them.
	cases := map[string]string{
		`A\(B\)C`:  "A(B)C",
		`tab\there`: "tab\there",
		`\101\102`: "AB",
		`back\\`:   `back\`,
	}
	for in, want := range cases {
		if got := decodeLiteral([]byte(in)); got != want {
			t.Errorf("decodeLiteral(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassifier_ErrorDefaultsToText(t *testing.T) {
	// WHAT: An unreadable path classifies as text.
	// WHY: The text-layer strategy is the cheap first attempt and fails fast
	// on a real scan; guessing image would skip it for good.
	c := NewClassifier(Config{})
	if got := c.Classify(t.Context(), "/nonexistent/file.pdf"); got != ClassText {
		t.Errorf("Classify on error = %v, want %v", got, ClassText)
	}
}
