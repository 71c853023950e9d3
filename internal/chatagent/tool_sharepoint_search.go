package chatagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const sharepointSearchMaxHits = 25

// sharepointSearchTool is the KQL-mode retrieval tool: a provider-native
// keyword search scoped to the conversation's site, with no permission
// filtering layer of its own (the provider's own search already scopes
// results to what the app-only credential can see within the site).
type sharepointSearchTool struct {
	provider Provider
	siteURL  string
}

type sharepointSearchInput struct {
	Query string `json:"query"`
}

func (t *sharepointSearchTool) Name() string { return "sharepoint_search" }

func (t *sharepointSearchTool) Description() string {
	return "Searches SharePoint for documents and pages matching 1-3 topic keywords, scoped to the current site. Do not include user-specific context in the query."
}

func (t *sharepointSearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "1-3 topic keywords, no user-specific context.", Required: true},
		}),
	}, nil
}

func (t *sharepointSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input sharepointSearchInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return fmt.Sprintf("sharepoint_search: invalid input: %v", err), nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return "sharepoint_search: query is required", nil
	}

	docs, err := t.provider.SearchKeyword(ctx, input.Query, t.siteURL, sharepointSearchMaxHits)
	if err != nil {
		return fmt.Sprintf("sharepoint_search: search failed: %v", err), nil
	}
	if len(docs) == 0 {
		return "sharepoint_search: no results found", nil
	}

	var sb strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&sb, "{name: %q, webUrl: %q, driveId: %q, itemId: %q, lastModified: %q}\n",
			d.Title, d.WebURL, d.DriveID, d.DriveItemID, d.LastModified.Format("2006-01-02T15:04:05Z"))
	}
	return sb.String(), nil
}
