package extractor

import (
	"regexp"
	"strings"
)

var (
	spacesTabs   = regexp.MustCompile(`[ \t]{2,}`)
	threeNewline = regexp.MustCompile(`\n{3,}`)
)

// MinContentLength is the normalized-content floor below which a document
// is dropped as "insufficient content".
const MinContentLength = 50

// Normalize applies the post-extraction cleanup common to every file type:
// CRLF/CR to LF, collapsing runs of spaces/tabs, collapsing 3+ newlines to
// exactly two, trimming each line, and trimming the ends.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spacesTabs.ReplaceAllString(text, " ")
	text = threeNewline.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")

	return strings.TrimSpace(text)
}
