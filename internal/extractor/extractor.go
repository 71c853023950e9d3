// Package extractor decodes raw document bytes into plain text, dispatching
// by docprovider.FileType. Anything other than pdf/doc/docx/aspx returns
// empty text, which the indexing pipeline treats as "skip".
package extractor

import (
	"context"

	"github.com/54b3r/kagent-go/internal/docprovider"
)

// PageFetcher resolves the structured parts of an aspx page, letting the
// extractor stay decoupled from the concrete docprovider.Client.
type PageFetcher interface {
	ResolveSite(ctx context.Context, host, siteName string) (string, error)
	GetPageContent(ctx context.Context, siteID, pageName string) ([]docprovider.PagePart, error)
}

// Extract decodes raw bytes for doc into plain, normalized text. For aspx
// documents, pages is queried first for structured page parts; raw is used
// as a fallback only when the structured endpoint yields nothing. For all
// other types, pages may be nil.
func Extract(ctx context.Context, doc docprovider.KnowledgeDocument, raw []byte, pages PageFetcher) (string, error) {
	var text string
	var err error

	switch doc.FileType {
	case docprovider.FileTypePDF:
		text, err = extractPDF(raw)
	case docprovider.FileTypeDoc, docprovider.FileTypeDocx:
		text, err = extractDocx(raw)
	case docprovider.FileTypeAspx:
		text, err = extractAspx(ctx, doc, raw, pages)
	default:
		return "", nil
	}
	if err != nil {
		// Parse/content errors are treated as empty extract, not fatal —
		// the pipeline skips the document.
		return "", nil
	}

	return Normalize(text), nil
}
