package chatagent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// knowledgeSearchTool is the RAG-mode retrieval tool. It over-fetches,
// filters by the caller's actual document access, dedupes per document, and
// formats the survivors as a text block the model can quote from. Documents
// filtered out here never reach the model — there is no later point at
// which a denied chunk could leak into the response.
type knowledgeSearchTool struct {
	embed      Embedder
	store      vectorstore.Store
	provider   Provider
	user       AuthenticatedUser
	topK       int
	useHybrid  bool
	permission permissionCache
}

type knowledgeSearchInput struct {
	Query string `json:"query"`
}

func (t *knowledgeSearchTool) Name() string { return "knowledge_search" }

func (t *knowledgeSearchTool) Description() string {
	return "Searches the indexed knowledge base for chunks relevant to a question. Pass the user's question verbatim, without augmentation. Returns only chunks the current user is permitted to access."
}

func (t *knowledgeSearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "The user's question, passed through verbatim.", Required: true},
		}),
	}, nil
}

func (t *knowledgeSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input knowledgeSearchInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return fmt.Sprintf("knowledge_search: invalid input: %v", err), nil
	}
	if strings.TrimSpace(input.Query) == "" {
		return "knowledge_search: query is required", nil
	}

	topK := t.topK
	if topK <= 0 {
		topK = 5
	}

	results, err := t.embed.EmbedAll(ctx, []string{input.Query})
	if err != nil {
		return fmt.Sprintf("knowledge_search: embedding failed: %v", err), nil
	}
	if len(results) == 0 {
		return "knowledge_search: embedding returned no vector", nil
	}
	queryVec := results[0].Embedding

	searchOpts := vectorstore.SearchOptions{TopK: topK * 2}
	var hits []vectorstore.SearchHit
	if t.useHybrid {
		hits, err = t.store.SearchHybrid(ctx, input.Query, queryVec, searchOpts)
	} else {
		hits, err = t.store.SearchSimilar(ctx, queryVec, searchOpts)
	}
	if err != nil {
		return fmt.Sprintf("knowledge_search: search failed: %v", err), nil
	}
	if len(hits) == 0 {
		return "knowledge_search: no results found", nil
	}

	accessible := t.filterByAccess(ctx, hits)
	if len(accessible) == 0 {
		return "knowledge_search: no accessible results found", nil
	}

	best := dedupeByDocument(accessible)
	sort.Slice(best, func(i, j int) bool { return best[i].Score > best[j].Score })
	if len(best) > topK {
		best = best[:topK]
	}

	return formatKnowledgeResults(best), nil
}

// filterByAccess probes each unique documentId once, memoizing the result in
// the per-request permission cache, and drops every chunk whose document the
// caller cannot access.
func (t *knowledgeSearchTool) filterByAccess(ctx context.Context, hits []vectorstore.SearchHit) []vectorstore.SearchHit {
	accessible := make([]vectorstore.SearchHit, 0, len(hits))
	for _, h := range hits {
		docID := h.Chunk.DocumentID
		allowed, known := t.permission.get(docID)
		if !known {
			probeDoc := docprovider.KnowledgeDocument{
				ID:          docID,
				DriveID:     h.Chunk.DriveID,
				DriveItemID: h.Chunk.DriveItemID,
				WebURL:      h.Chunk.WebURL,
				SiteURL:     h.Chunk.SiteURL,
				SiteName:    h.Chunk.SiteName,
			}
			allowed = t.provider.ProbeAccess(ctx, probeDoc, t.user.Credential)
			t.permission.set(docID, allowed)
		}
		if allowed {
			accessible = append(accessible, h)
		}
	}
	return accessible
}

// dedupeByDocument keeps only the highest-scoring chunk per documentId.
func dedupeByDocument(hits []vectorstore.SearchHit) []vectorstore.SearchHit {
	best := make(map[string]vectorstore.SearchHit, len(hits))
	for _, h := range hits {
		docID := h.Chunk.DocumentID
		if existing, ok := best[docID]; !ok || h.Score > existing.Score {
			best[docID] = h
		}
	}
	out := make([]vectorstore.SearchHit, 0, len(best))
	for _, h := range best {
		out = append(out, h)
	}
	return out
}

func formatKnowledgeResults(hits []vectorstore.SearchHit) string {
	var sb strings.Builder
	for i, h := range hits {
		c := h.Chunk
		fmt.Fprintf(&sb, "Source %d: %s\n", i+1, c.DocumentTitle)
		fmt.Fprintf(&sb, "url: %s\n", c.WebURL)
		fmt.Fprintf(&sb, "site: %s\n", c.SiteName)
		fmt.Fprintf(&sb, "driveId: %s\n", c.DriveID)
		fmt.Fprintf(&sb, "itemId: %s\n", c.DriveItemID)
		fmt.Fprintf(&sb, "relevance: %.0f%%\n", h.Score*100)
		fmt.Fprintf(&sb, "%s\n\n", c.ChunkText)
	}
	return sb.String()
}
