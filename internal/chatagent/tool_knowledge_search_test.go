package chatagent

import (
	"context"
	"strings"
	"testing"

	"github.com/54b3r/kagent-go/internal/vectorstore"
)

func Test_KnowledgeSearchTool_FiltersInaccessibleAndDedupes(t *testing.T) {
	t.Parallel()

	hits := []vectorstore.SearchHit{
		fixedHit("doc-a", "Doc A", "https://x/a.pdf", "eng", 0.9),
		fixedHit("doc-a", "Doc A", "https://x/a.pdf", "eng", 0.95), // same doc, higher score
		fixedHit("doc-b", "Doc B", "https://x/b.pdf", "eng", 0.8),  // inaccessible
	}
	store := &fakeStore{hits: hits}
	provider := &fakeProvider{accessible: map[string]bool{
		"doc-a": true,
		"doc-b": false,
	}}
	tool := &knowledgeSearchTool{
		embed: &fakeEmbedder{vector: []float32{1, 2, 3}}, store: store, provider: provider,
		topK: 5, permission: make(permissionCache),
	}

	out, err := tool.InvokableRun(context.Background(), `{"query":"what is the policy"}`)
	if err != nil {
		t.Fatalf("InvokableRun returned error: %v", err)
	}
	if strings.Count(out, "Doc A") != 1 {
		t.Errorf("output = %q, want Doc A to appear exactly once after dedup", out)
	}
	if strings.Contains(out, "Doc B") {
		t.Errorf("output = %q, want Doc B filtered out as inaccessible", out)
	}
	if !strings.Contains(out, "relevance: 95%") {
		t.Errorf("output = %q, want the higher-scoring duplicate to win", out)
	}
}

func Test_KnowledgeSearchTool_EmitsDriveItemIDNotChunkID(t *testing.T) {
	t.Parallel()

	hit := fixedHit("doc-a", "Doc A", "https://x/a.pdf", "eng", 0.9)
	hit.Chunk.DriveItemID = "real-drive-item-id"
	store := &fakeStore{hits: []vectorstore.SearchHit{hit}}
	provider := &fakeProvider{accessible: map[string]bool{"doc-a": true}}
	tool := &knowledgeSearchTool{
		embed: &fakeEmbedder{vector: []float32{1}}, store: store, provider: provider,
		topK: 5, permission: make(permissionCache),
	}

	out, err := tool.InvokableRun(context.Background(), `{"query":"q"}`)
	if err != nil {
		t.Fatalf("InvokableRun returned error: %v", err)
	}
	if !strings.Contains(out, "itemId: real-drive-item-id") {
		t.Errorf("output = %q, want itemId to be the chunk's driveItemId, not its chunk id", out)
	}
	if strings.Contains(out, hit.Chunk.ID) {
		t.Errorf("output = %q, must not leak the internal chunk id as itemId", out)
	}
}

func Test_KnowledgeSearchTool_NoAccessibleResults(t *testing.T) {
	t.Parallel()

	store := &fakeStore{hits: []vectorstore.SearchHit{fixedHit("doc-a", "Doc A", "https://x/a.pdf", "eng", 0.9)}}
	provider := &fakeProvider{accessible: map[string]bool{"doc-a": false}}
	tool := &knowledgeSearchTool{
		embed: &fakeEmbedder{vector: []float32{1}}, store: store, provider: provider,
		topK: 5, permission: make(permissionCache),
	}

	out, err := tool.InvokableRun(context.Background(), `{"query":"q"}`)
	if err != nil {
		t.Fatalf("InvokableRun returned error: %v", err)
	}
	if !strings.Contains(out, "no accessible results") {
		t.Errorf("output = %q, want a no-accessible-results message", out)
	}
}

func Test_KnowledgeSearchTool_RequiresQuery(t *testing.T) {
	t.Parallel()

	tool := &knowledgeSearchTool{embed: &fakeEmbedder{}, store: &fakeStore{}, provider: &fakeProvider{}, permission: make(permissionCache)}
	out, err := tool.InvokableRun(context.Background(), `{"query":"  "}`)
	if err != nil {
		t.Fatalf("InvokableRun returned error: %v", err)
	}
	if !strings.Contains(out, "query is required") {
		t.Errorf("output = %q, want a query-required message", out)
	}
}

func Test_KnowledgeSearchTool_PermissionCacheIsMemoized(t *testing.T) {
	t.Parallel()

	hits := []vectorstore.SearchHit{
		fixedHit("doc-a", "Doc A", "https://x/a.pdf", "eng", 0.9),
		fixedHit("doc-a", "Doc A", "https://x/a.pdf", "eng", 0.7),
	}
	cache := make(permissionCache)
	cache.set("doc-a", false) // pre-seed: probe must not be called again
	provider := &fakeProvider{accessible: map[string]bool{"doc-a": true}}
	tool := &knowledgeSearchTool{
		embed: &fakeEmbedder{vector: []float32{1}}, store: &fakeStore{hits: hits}, provider: provider,
		topK: 5, permission: cache,
	}

	out, err := tool.InvokableRun(context.Background(), `{"query":"q"}`)
	if err != nil {
		t.Fatalf("InvokableRun returned error: %v", err)
	}
	if !strings.Contains(out, "no accessible results") {
		t.Errorf("output = %q, want the cached denial to be honored over the provider's live answer", out)
	}
}
