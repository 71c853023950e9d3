package extractor

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF decodes raw PDF bytes, joining each page's text items with a
// single space and joining pages with a blank line, exactly as specified.
func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		items := make([]string, 0, len(content.Text))
		for _, t := range content.Text {
			s := strings.TrimSpace(t.S)
			if s != "" {
				items = append(items, s)
			}
		}
		pages = append(pages, strings.Join(items, " "))
	}

	return strings.Join(pages, "\n\n"), nil
}
