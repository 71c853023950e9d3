package chatagent

import (
	"context"

	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/embedder"
)

// Provider is the slice of docprovider.Client the chat tools depend on,
// narrowed so fakes can stand in for tests without a real HTTP backend.
type Provider interface {
	Search(ctx context.Context, opts docprovider.SearchOptions) ([]docprovider.KnowledgeDocument, error)
	SearchKeyword(ctx context.Context, query, siteURL string, maxHits int) ([]docprovider.KnowledgeDocument, error)
	DownloadBytes(ctx context.Context, doc docprovider.KnowledgeDocument) ([]byte, error)
	ResolveSiteDescriptor(ctx context.Context, siteURL string) (docprovider.SiteDescriptor, error)
	ProbeAccess(ctx context.Context, doc docprovider.KnowledgeDocument, userCreds docprovider.CredentialSource) bool
	GetUserProfile(ctx context.Context, userCreds docprovider.CredentialSource) (docprovider.UserProfile, error)
}

// Embedder is the slice of embedder.BatchEmbedder the knowledge_search tool
// needs: a single query string embedded through the same batching path used
// by indexing, so behavior (batching, token accounting) stays identical.
type Embedder interface {
	EmbedAll(ctx context.Context, texts []string) ([]embedder.Result, error)
}
