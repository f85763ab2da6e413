package clause

import "strings"

// Normalize strips carriage returns. Nothing else is touched; whitespace the
// segmenter cares about is handled during segmentation.
func Normalize(text string) string {
	return strings.ReplaceAll(text, "\r", "")
}
