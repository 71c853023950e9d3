package extractor

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	docxParaBreak = regexp.MustCompile(`</w:p>`)
	docxTag       = regexp.MustCompile(`<[^>]+>`)
)

// extractDocx decodes raw Word bytes via nguyenthenguyen/docx's in-memory
// reader. The library hands back document.xml's raw markup (it is built for
// template search-and-replace, not plain-text extraction), so paragraph
// boundaries are mapped to newlines before the remaining XML tags are
// stripped — the same strip-then-normalize shape as the aspx markup path.
func extractDocx(raw []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	xmlContent := r.Editable().GetContent()
	withBreaks := docxParaBreak.ReplaceAllString(xmlContent, "\n")
	plain := docxTag.ReplaceAllString(withBreaks, "")

	return strings.TrimSpace(plain), nil
}
