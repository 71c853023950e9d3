package chatagent

import (
	"context"
	"time"

	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/embedder"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

type fakeProvider struct {
	site        docprovider.SiteDescriptor
	siteErr     error
	profile     docprovider.UserProfile
	profileErr  error
	downloadErr error
	content     []byte
	searchDocs  []docprovider.KnowledgeDocument
	searchErr   error
	accessible  map[string]bool // keyed by document id or webUrl
}

func (f *fakeProvider) Search(ctx context.Context, opts docprovider.SearchOptions) ([]docprovider.KnowledgeDocument, error) {
	return f.searchDocs, f.searchErr
}

func (f *fakeProvider) SearchKeyword(ctx context.Context, query, siteURL string, maxHits int) ([]docprovider.KnowledgeDocument, error) {
	return f.searchDocs, f.searchErr
}

func (f *fakeProvider) DownloadBytes(ctx context.Context, doc docprovider.KnowledgeDocument) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.content, nil
}

func (f *fakeProvider) ResolveSiteDescriptor(ctx context.Context, siteURL string) (docprovider.SiteDescriptor, error) {
	return f.site, f.siteErr
}

func (f *fakeProvider) ProbeAccess(ctx context.Context, doc docprovider.KnowledgeDocument, userCreds docprovider.CredentialSource) bool {
	if f.accessible == nil {
		return true
	}
	if allowed, ok := f.accessible[doc.ID]; ok {
		return allowed
	}
	if allowed, ok := f.accessible[doc.WebURL]; ok {
		return allowed
	}
	return false
}

func (f *fakeProvider) GetUserProfile(ctx context.Context, userCreds docprovider.CredentialSource) (docprovider.UserProfile, error) {
	return f.profile, f.profileErr
}

var _ Provider = (*fakeProvider)(nil)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([]embedder.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]embedder.Result, len(texts))
	for i := range texts {
		out[i] = embedder.Result{Embedding: f.vector, TokenCount: 1}
	}
	return out, nil
}

var _ Embedder = (*fakeEmbedder)(nil)

type fakeStore struct {
	hits []vectorstore.SearchHit
	err  error
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error { return nil }
func (f *fakeStore) UpsertChunks(ctx context.Context, chunks []vectorstore.DocumentChunk) error {
	return nil
}
func (f *fakeStore) DeleteByDocumentID(ctx context.Context, documentID string) error { return nil }
func (f *fakeStore) SearchSimilar(ctx context.Context, q []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	return f.hits, f.err
}
func (f *fakeStore) SearchHybrid(ctx context.Context, query string, q []float32, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	return f.hits, f.err
}
func (f *fakeStore) GetStats(ctx context.Context) (vectorstore.Stats, error) {
	return vectorstore.Stats{}, nil
}
func (f *fakeStore) Close() error { return nil }

var _ vectorstore.Store = (*fakeStore)(nil)

type fakePageFetcher struct {
	text string
}

func (f *fakePageFetcher) ResolveSite(ctx context.Context, host, siteName string) (string, error) {
	return "site-id", nil
}

func (f *fakePageFetcher) GetPageContent(ctx context.Context, siteID, pageName string) ([]docprovider.PagePart, error) {
	return []docprovider.PagePart{{Text: f.text}}, nil
}

func fixedHit(docID, title, webURL, siteName string, score float32) vectorstore.SearchHit {
	return vectorstore.SearchHit{
		Chunk: vectorstore.DocumentChunk{
			ID:                 docID + "_chunk_0",
			DocumentID:         docID,
			DocumentTitle:      title,
			WebURL:             webURL,
			SiteName:           siteName,
			ChunkText:          "some relevant text",
			DocumentModifiedAt: time.Now().UnixMilli(),
		},
		Score: score,
	}
}
