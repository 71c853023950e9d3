package chatagent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/extractor"
)

const readFileTruncateLength = 8000

// readFileTool downloads and extracts a single document, identified either
// by driveId+itemId or by webUrl (see docprovider.Client.DownloadBytes's
// same duality).
type readFileTool struct {
	provider Provider
	pages    extractor.PageFetcher
}

type readFileInput struct {
	DriveID string `json:"driveId,omitempty"`
	ItemID  string `json:"itemId,omitempty"`
	Name    string `json:"name,omitempty"`
	WebURL  string `json:"webUrl,omitempty"`
}

func (t *readFileTool) Name() string { return "read_file_content" }

func (t *readFileTool) Description() string {
	return "Downloads and extracts the text content of a single document. Provide either (driveId and itemId) or webUrl, plus an optional name for file-type inference. Content longer than 8000 characters is truncated."
}

func (t *readFileTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"driveId": {Type: schema.String, Desc: "Drive id of the document. Must be paired with itemId."},
			"itemId":  {Type: schema.String, Desc: "Drive item id of the document. Must be paired with driveId."},
			"name":    {Type: schema.String, Desc: "File name, used to infer the file type when not already known."},
			"webUrl":  {Type: schema.String, Desc: "Web URL of the document. Alternative to driveId+itemId."},
		}),
	}, nil
}

func (t *readFileTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input readFileInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return fmt.Sprintf("read_file_content: invalid input: %v", err), nil
	}

	byID := input.DriveID != "" && input.ItemID != ""
	byURL := input.WebURL != ""
	if byID == byURL {
		return "read_file_content: requires exactly one of (driveId and itemId) or webUrl", nil
	}

	doc := docprovider.KnowledgeDocument{
		DriveID:     input.DriveID,
		DriveItemID: input.ItemID,
		WebURL:      input.WebURL,
		Title:       input.Name,
	}
	if input.Name != "" {
		doc.FileType = docprovider.FileTypeFromExtension(input.Name)
	} else if input.WebURL != "" {
		doc.FileType = docprovider.FileTypeFromExtension(input.WebURL)
	}

	raw, err := t.provider.DownloadBytes(ctx, doc)
	if err != nil {
		return fmt.Sprintf("read_file_content: download failed: %v", err), nil
	}

	text, err := extractor.Extract(ctx, doc, raw, t.pages)
	if err != nil {
		return fmt.Sprintf("read_file_content: extraction failed: %v", err), nil
	}
	if text == "" {
		return "read_file_content: no extractable text content", nil
	}

	if len(text) > readFileTruncateLength {
		text = text[:readFileTruncateLength] + "\n[Content truncated]"
	}
	return text, nil
}
