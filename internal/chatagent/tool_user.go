package chatagent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// userTool fetches the delegated caller's own directory profile.
type userTool struct {
	provider Provider
	user     AuthenticatedUser
}

func (t *userTool) Name() string { return "get_current_user" }

func (t *userTool) Description() string {
	return "Returns the current user's profile (name, title, department, company, location, manager), fetched with their own credential. Takes no arguments."
}

func (t *userTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        t.Name(),
		Desc:        t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *userTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	profile, err := t.provider.GetUserProfile(ctx, t.user.Credential)
	if err != nil {
		return fmt.Sprintf("get_current_user: failed to fetch profile: %v", err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "name: %s\n", profile.Name)
	fmt.Fprintf(&sb, "email: %s\n", profile.Email)
	fmt.Fprintf(&sb, "title: %s\n", profile.Title)
	fmt.Fprintf(&sb, "department: %s\n", profile.Department)
	fmt.Fprintf(&sb, "company: %s\n", profile.Company)
	fmt.Fprintf(&sb, "location: %s\n", profile.Location)
	if profile.Manager != "" {
		fmt.Fprintf(&sb, "manager: %s\n", profile.Manager)
	}
	return sb.String(), nil
}
