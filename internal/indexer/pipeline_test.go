package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/54b3r/kagent-go/internal/chunker"
	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/embedder"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

type fakeProvider struct {
	docs         []docprovider.KnowledgeDocument
	content      map[string][]byte
	downloadErrs map[string]error
}

func (f *fakeProvider) Search(ctx context.Context, opts docprovider.SearchOptions) ([]docprovider.KnowledgeDocument, error) {
	return f.docs, nil
}

func (f *fakeProvider) DownloadBytes(ctx context.Context, doc docprovider.KnowledgeDocument) ([]byte, error) {
	if err, ok := f.downloadErrs[doc.ID]; ok {
		return nil, err
	}
	return f.content[doc.ID], nil
}

type fakePageFetcher struct {
	text string
}

func (f *fakePageFetcher) ResolveSite(ctx context.Context, host, siteName string) (string, error) {
	return "site-id", nil
}

func (f *fakePageFetcher) GetPageContent(ctx context.Context, siteID, pageName string) ([]docprovider.PagePart, error) {
	return []docprovider.PagePart{{Text: f.text}}, nil
}

type fakeEmbedder struct {
	calls     int
	batchSize int
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([]embedder.Result, error) {
	f.calls++
	f.batchSize = len(texts)
	out := make([]embedder.Result, len(texts))
	for i := range texts {
		out[i] = embedder.Result{Embedding: []float32{1, 2, 3}, TokenCount: 1}
	}
	return out, nil
}

type fakeStore struct {
	upserted []vectorstore.DocumentChunk
	deleted  []string
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }
func (f *fakeStore) UpsertChunks(ctx context.Context, chunks []vectorstore.DocumentChunk) error {
	f.upserted = append(f.upserted, chunks...)
	return nil
}
func (f *fakeStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	f.deleted = append(f.deleted, documentID)
	return nil
}
func (f *fakeStore) SearchSimilar(ctx context.Context, q []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	return nil, nil
}
func (f *fakeStore) SearchHybrid(ctx context.Context, query string, q []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	return nil, nil
}
func (f *fakeStore) GetStats(ctx context.Context) (vectorstore.Stats, error) {
	return vectorstore.Stats{}, nil
}
func (f *fakeStore) Close() error { return nil }

var _ DocumentProvider = (*fakeProvider)(nil)
var _ Embedder = (*fakeEmbedder)(nil)
var _ vectorstore.Store = (*fakeStore)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Test_Pipeline_SingleDocumentFreshIndex mirrors the literal scenario: a
// single document whose extracted text is "alpha beta gamma " repeated to
// ~4500 chars chunks into 4 pieces, embeds in one call, and upserts 4
// chunks, deleting any prior chunks for the document first.
func Test_Pipeline_SingleDocumentFreshIndex(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("alpha beta gamma ", 265)
	doc := docprovider.KnowledgeDocument{
		ID:       "doc1",
		Title:    "doc1.aspx",
		FileType: docprovider.FileTypeAspx,
		WebURL:   "https://contoso.sharepoint.com/sites/eng/SitePages/doc1.aspx",
		SiteName: "eng",
	}
	provider := &fakeProvider{docs: []docprovider.KnowledgeDocument{doc}}
	fe := &fakeEmbedder{}
	store := &fakeStore{}
	pages := &fakePageFetcher{text: text}

	p := New(provider, pages, fe, store, chunker.DefaultOptions(), testLogger())

	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.DocumentsProcessed != 1 {
		t.Errorf("DocumentsProcessed = %d, want 1", result.DocumentsProcessed)
	}
	if result.ChunksCreated < 2 {
		t.Errorf("ChunksCreated = %d, want multiple chunks for a %d-char document", result.ChunksCreated, len(text))
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %+v, want none", result.Errors)
	}
	if fe.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 (single batched call)", fe.calls)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "doc1" {
		t.Errorf("deleted = %+v, want [doc1]", store.deleted)
	}
	if len(store.upserted) != result.ChunksCreated {
		t.Errorf("upserted = %d chunks, want %d", len(store.upserted), result.ChunksCreated)
	}
}

func Test_Pipeline_SkipsInsufficientContent(t *testing.T) {
	t.Parallel()

	doc := docprovider.KnowledgeDocument{
		ID:       "doc1",
		Title:    "short.aspx",
		FileType: docprovider.FileTypeAspx,
		WebURL:   "https://contoso.sharepoint.com/sites/eng/SitePages/short.aspx",
		SiteName: "eng",
	}
	provider := &fakeProvider{docs: []docprovider.KnowledgeDocument{doc}}
	fe := &fakeEmbedder{}
	store := &fakeStore{}
	pages := &fakePageFetcher{text: "too short"}

	p := New(provider, pages, fe, store, chunker.DefaultOptions(), testLogger())

	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.DocumentsProcessed != 0 {
		t.Errorf("DocumentsProcessed = %d, want 0", result.DocumentsProcessed)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no hard errors for a content-length shortfall, got %+v", result.Errors)
	}
	if fe.calls != 0 {
		t.Errorf("embedder should not have been called, got %d calls", fe.calls)
	}
}

// Test_Pipeline_DocumentFailureIsolated mirrors the "one document fails to
// download, the other is fully indexed" scenario.
func Test_Pipeline_DocumentFailureIsolated(t *testing.T) {
	t.Parallel()

	goodText := strings.Repeat("alpha beta gamma ", 20)
	docs := []docprovider.KnowledgeDocument{
		{ID: "doc1", Title: "broken.aspx", FileType: docprovider.FileTypeAspx, WebURL: "https://contoso.sharepoint.com/sites/eng/SitePages/broken.aspx", SiteName: "eng"},
		{ID: "doc2", Title: "fine.aspx", FileType: docprovider.FileTypeAspx, WebURL: "https://contoso.sharepoint.com/sites/eng/SitePages/fine.aspx", SiteName: "eng"},
	}
	provider := &fakeProvider{
		docs: docs,
		downloadErrs: map[string]error{
			"doc1": errors.New("transport failure"),
		},
	}
	fe := &fakeEmbedder{}
	store := &fakeStore{}
	pages := &fakePageFetcher{text: goodText}
	p := New(provider, pages, fe, store, chunker.DefaultOptions(), testLogger())

	result, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.DocumentsFound != 2 {
		t.Errorf("DocumentsFound = %d, want 2", result.DocumentsFound)
	}
	if result.DocumentsProcessed != 1 {
		t.Errorf("DocumentsProcessed = %d, want 1", result.DocumentsProcessed)
	}
	if len(result.Errors) != 1 || result.Errors[0].DocumentID != "doc1" {
		t.Fatalf("Errors = %+v, want one entry for doc1", result.Errors)
	}
}

func Test_Pipeline_SkipEmbeddings(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("alpha beta gamma ", 20)
	doc := docprovider.KnowledgeDocument{
		ID: "doc1", Title: "doc1.aspx", FileType: docprovider.FileTypeAspx,
		WebURL: "https://contoso.sharepoint.com/sites/eng/SitePages/doc1.aspx", SiteName: "eng",
	}
	provider := &fakeProvider{docs: []docprovider.KnowledgeDocument{doc}}
	fe := &fakeEmbedder{}
	store := &fakeStore{}
	pages := &fakePageFetcher{text: text}
	p := New(provider, pages, fe, store, chunker.DefaultOptions(), testLogger())

	result, err := p.Run(context.Background(), RunOptions{SkipEmbeddings: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.DocumentsProcessed != 1 {
		t.Errorf("DocumentsProcessed = %d, want 1", result.DocumentsProcessed)
	}
	if result.ChunksCreated != 1 {
		t.Errorf("ChunksCreated = %d, want 1", result.ChunksCreated)
	}
	if fe.calls != 0 {
		t.Errorf("embedder should not be called when skipEmbeddings is set, got %d calls", fe.calls)
	}
	if len(store.upserted) != 0 || len(store.deleted) != 0 {
		t.Errorf("store should not be touched when skipEmbeddings is set")
	}
}
