package chatagent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// siteTool resolves the site the current conversation is scoped to.
type siteTool struct {
	provider Provider
	siteURL  string
}

func (t *siteTool) Name() string { return "get_current_site" }

func (t *siteTool) Description() string {
	return "Resolves the SharePoint site the current conversation is scoped to and returns its id, URL, and name. Takes no arguments."
}

func (t *siteTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        t.Name(),
		Desc:        t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *siteTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	if t.siteURL == "" {
		return "No site is bound to this conversation.", nil
	}

	site, err := t.provider.ResolveSiteDescriptor(ctx, t.siteURL)
	if err != nil {
		return fmt.Sprintf("get_current_site: could not resolve %q: %v", t.siteURL, err), nil
	}

	return fmt.Sprintf("siteId: %s\nsiteUrl: %s\nsiteName: %s\nhost: %s",
		site.SiteID, site.SiteURL, site.SiteName, site.Host), nil
}
