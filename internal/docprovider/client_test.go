package docprovider

import (
	"context"
	"testing"
)

func Test_SplitWebURL(t *testing.T) {
	t.Parallel()
	host, path, err := splitWebURL("https://contoso.sharepoint.com/sites/eng/Shared%20Documents/report.pdf")
	if err != nil {
		t.Fatalf("splitWebURL error = %v", err)
	}
	if host != "contoso.sharepoint.com" {
		t.Errorf("host = %q, want contoso.sharepoint.com", host)
	}
	if path != "/sites/eng/Shared%20Documents/report.pdf" {
		t.Errorf("path = %q, want /sites/eng/Shared%%20Documents/report.pdf", path)
	}
}

func Test_SplitWebURL_Malformed(t *testing.T) {
	t.Parallel()
	if _, _, err := splitWebURL("not-a-url"); err == nil {
		t.Error("splitWebURL(malformed) returned nil error, want error")
	}
}

func Test_HitToDocument_InfersFileType(t *testing.T) {
	t.Parallel()
	h := searchHit{ID: "1", Title: "report.pdf", WebURL: "https://contoso.sharepoint.com/report.pdf"}
	doc := hitToDocument(h)
	if doc.FileType != FileTypePDF {
		t.Errorf("FileType = %q, want pdf (inferred from title extension)", doc.FileType)
	}
}

func Test_HitToDocument_UsesExplicitFileType(t *testing.T) {
	t.Parallel()
	h := searchHit{ID: "1", Title: "page", FileType: "aspx"}
	doc := hitToDocument(h)
	if doc.FileType != FileTypeAspx {
		t.Errorf("FileType = %q, want aspx", doc.FileType)
	}
}

type fakeCreds struct {
	token string
	err   error
}

func (f fakeCreds) Token(ctx context.Context, scope string) (string, error) {
	return f.token, f.err
}

var _ CredentialSource = fakeCreds{}
