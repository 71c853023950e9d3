package chatagent

import (
	"context"
	"strings"
	"testing"
)

func Test_ReadFileTool_RequiresExactlyOneIdentifier(t *testing.T) {
	t.Parallel()

	tool := &readFileTool{provider: &fakeProvider{}}

	tests := []struct {
		name  string
		input string
	}{
		{"neither", `{}`},
		{"both", `{"driveId":"d1","itemId":"i1","webUrl":"https://x/sites/a/f.aspx"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := tool.InvokableRun(context.Background(), tc.input)
			if err != nil {
				t.Fatalf("InvokableRun returned error: %v", err)
			}
			if !strings.Contains(out, "requires exactly one") {
				t.Errorf("output = %q, want a validation message", out)
			}
		})
	}
}

func Test_ReadFileTool_TruncatesLongContent(t *testing.T) {
	t.Parallel()

	// aspx content is fetched through the PageFetcher, not the downloaded
	// bytes, so a long fake page body exercises the truncation path without
	// needing a real PDF/DOCX payload.
	longText := strings.Repeat("a ", 9000)
	tool := &readFileTool{
		provider: &fakeProvider{},
		pages:    &fakePageFetcher{text: longText},
	}

	out, err := tool.InvokableRun(context.Background(), `{"webUrl":"https://contoso.sharepoint.com/sites/eng/SitePages/doc.aspx"}`)
	if err != nil {
		t.Fatalf("InvokableRun returned error: %v", err)
	}
	if !strings.HasSuffix(out, "[Content truncated]") {
		t.Errorf("output does not end with the truncation suffix, got %q", out[max(0, len(out)-40):])
	}
	if len(out) != readFileTruncateLength+len("\n[Content truncated]") {
		t.Errorf("output length = %d, want %d", len(out), readFileTruncateLength+len("\n[Content truncated]"))
	}
}
