package extract

import "github.com/aretw0/slotfill/pkg/kinds"

// SubtractSpan replaces the bytes covered by span with a single space, keeping the tokens on
// either side apart. Out-of-range spans are clamped.
func SubtractSpan(text string, span kinds.Span) string {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return text
	}
	return text[:start] + " " + text[end:]
}
