package clause

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinClauseRunes is the length below which a fragment is folded into the
	// clause before it.
	MinClauseRunes = 120

	// MinClauses is the smallest heuristic result kept before falling back to
	// paragraph splitting.
	MinClauses = 3

	splitToken  = "<<<SPLIT>>>"
	splitMarker = "\n" + splitToken + "\n"
)

var (
	// "Section 4", "ARTICLE IV", "clause 2.1", or a shouted heading line.
	headingPattern = regexp.MustCompile(`(?m)^\s*(?i:section|clause|article)\s+[\dIVXivx.]+|^[A-Z][A-Z \-]{5,}$`)

	// "1", "1.", "2.3.1" or "iv." at the start of a line.
	numberedPattern = regexp.MustCompile(`(?m)^\s*(?:\d+(?:\.\d+)*\.?|[ivx]+\.)\s+`)

	paragraphBreak = regexp.MustCompile(`\n{2,}`)
)

// Segment splits a document into clauses in document order.
//
// Headings and numbered items start a new clause; fragments shorter than
// MinClauseRunes are merged into the preceding clause. When the heuristics
// find fewer than MinClauses clauses the paragraph split is returned instead.
// Input that is empty or only whitespace yields an empty slice.
func Segment(text string) []string {
	norm := Normalize(text)

	marked := headingPattern.ReplaceAllStringFunc(norm, mark)
	marked = numberedPattern.ReplaceAllStringFunc(marked, mark)

	clauses := merge(trimmed(strings.Split(marked, splitToken)))
	if len(clauses) < MinClauses {
		return Paragraphs(norm)
	}
	return clauses
}

// Paragraphs splits normalized text on runs of blank lines.
func Paragraphs(text string) []string {
	return trimmed(paragraphBreak.Split(text, -1))
}

func mark(match string) string {
	return splitMarker + match
}

func trimmed(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func merge(fragments []string) []string {
	merged := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if len(merged) > 0 && utf8.RuneCountInString(f) < MinClauseRunes {
			merged[len(merged)-1] += " " + f
			continue
		}
		merged = append(merged, f)
	}
	return merged
}
