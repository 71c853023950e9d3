package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/54b3r/kagent-go/internal/docprovider"
)

var (
	scriptOrStyle = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr)>`)
	brTag         = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
)

// htmlEntities is a limited, deterministic decode table — richer HTML
// parsing (a full entity table, malformed-markup recovery) is out of scope,
// avoiding a DOM-based HTML library for this kind of stripping.
var htmlEntities = map[string]string{
	"&nbsp;": " ",
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&#39;":  "'",
}

// stripHTML implements the four-step algorithm: drop script/style subtrees,
// map block-closing tags and <br> to newlines, drop remaining tags, decode
// the six named entities.
func stripHTML(raw string) string {
	text := scriptOrStyle.ReplaceAllString(raw, "")
	text = blockClose.ReplaceAllString(text, "\n")
	text = brTag.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	for entity, repl := range htmlEntities {
		text = strings.ReplaceAll(text, entity, repl)
	}
	return text
}

// extractAspx fetches the page's structured parts and, for each, prefers an
// explicit HTML payload, falling back to a data.properties.text field. If
// the structured endpoint yields nothing, it falls back to stripping raw as
// HTML directly — raw is the page file downloaded by the normal
// webUrl-addressed path, the same bytes every other file type extracts from.
func extractAspx(ctx context.Context, doc docprovider.KnowledgeDocument, raw []byte, pages PageFetcher) (string, error) {
	if pages == nil {
		return "", fmt.Errorf("extractor: aspx extraction requires a PageFetcher")
	}

	siteID, err := pages.ResolveSite(ctx, hostFromWebURL(doc.WebURL), doc.SiteName)
	if err != nil {
		return "", err
	}

	parts, err := pages.GetPageContent(ctx, siteID, pageNameFromWebURL(doc.WebURL))
	if err != nil {
		return "", err
	}

	var sections []string
	for _, p := range parts {
		if p.HTML != "" {
			sections = append(sections, stripHTML(p.HTML))
		} else if p.Text != "" {
			sections = append(sections, p.Text)
		}
	}
	if len(sections) == 0 {
		return stripHTML(string(raw)), nil
	}
	return strings.Join(sections, "\n\n"), nil
}

func hostFromWebURL(webURL string) string {
	trimmed := strings.TrimPrefix(webURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

func pageNameFromWebURL(webURL string) string {
	idx := strings.LastIndexByte(webURL, '/')
	if idx < 0 {
		return webURL
	}
	return webURL[idx+1:]
}
