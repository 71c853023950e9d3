package chatagent

import (
	"github.com/cloudwego/eino/components/tool"

	"github.com/54b3r/kagent-go/internal/extractor"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// Tool is the interface every chat tool satisfies in addition to Eino's
// tool.BaseTool, so the agent can log and route tool calls by name without
// type assertions.
type Tool interface {
	Name() string
	Description() string
}

// toolset builds the per-request tool list and owns the state that must
// never outlive a single request: the permission cache. A fresh toolset is
// constructed inside Handle for every call — never held on the ChatAgent
// itself — so concurrent chat requests never share mutable state.
type toolset struct {
	provider Provider
	embed    Embedder
	store    vectorstore.Store
	pages    extractor.PageFetcher

	user AuthenticatedUser
	site ChatContext

	topK       int
	useHybrid  bool
	permission permissionCache
}

func newToolset(a *ChatAgent, req ChatRequest) *toolset {
	return &toolset{
		provider:   a.provider,
		embed:      a.embed,
		store:      a.store,
		pages:      a.pages,
		user:       req.User,
		site:       req.Context,
		topK:       a.ragTopK,
		useHybrid:  a.useHybrid,
		permission: make(permissionCache),
	}
}

// build returns the tool list for mode: the three tools common to both
// modes, plus knowledge_search for RAG or sharepoint_search for KQL.
func (ts *toolset) build(mode SearchMode) []tool.BaseTool {
	common := []tool.BaseTool{
		&siteTool{provider: ts.provider, siteURL: ts.site.SiteURL},
		&userTool{provider: ts.provider, user: ts.user},
		&readFileTool{provider: ts.provider, pages: ts.pages},
	}
	if mode == ModeRAG {
		return append(common, &knowledgeSearchTool{
			embed: ts.embed, store: ts.store, provider: ts.provider,
			user: ts.user, topK: ts.topK, useHybrid: ts.useHybrid, permission: ts.permission,
		})
	}
	return append(common, &sharepointSearchTool{provider: ts.provider, siteURL: ts.site.SiteURL})
}
