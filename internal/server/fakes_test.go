package server

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/kagent-go/internal/chatagent"
	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/indexer"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// fakeChatHandler implements chatHandler for tests.
type fakeChatHandler struct {
	resp chatagent.ChatResponse
	err  error
	got  chatagent.ChatRequest
}

func (f *fakeChatHandler) Handle(_ context.Context, req chatagent.ChatRequest) (chatagent.ChatResponse, error) {
	f.got = req
	if f.err != nil {
		return chatagent.ChatResponse{}, f.err
	}
	return f.resp, nil
}

// fakeProfiles implements profileProvider for tests.
type fakeProfiles struct {
	profile docprovider.UserProfile
	err     error
}

func (f *fakeProfiles) GetUserProfile(_ context.Context, _ docprovider.CredentialSource) (docprovider.UserProfile, error) {
	if f.err != nil {
		return docprovider.UserProfile{}, f.err
	}
	return f.profile, nil
}

// fakeIndexRunner implements indexRunner for tests.
type fakeIndexRunner struct {
	result  indexer.Result
	started bool
}

func (f *fakeIndexRunner) RunNow(_ context.Context, _ indexer.RunOptions) (indexer.Result, bool) {
	return f.result, f.started
}

// fakeCandidateLister implements candidateLister for tests.
type fakeCandidateLister struct {
	docs []docprovider.KnowledgeDocument
	err  error
}

func (f *fakeCandidateLister) Search(_ context.Context, _ docprovider.SearchOptions) ([]docprovider.KnowledgeDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// fakeStore implements vectorstore.Store for tests; only GetStats is
// exercised by the admin stats endpoint.
type fakeStore struct {
	stats vectorstore.Stats
	err   error
}

func (f *fakeStore) EnsureSchema(context.Context) error { return nil }
func (f *fakeStore) UpsertChunks(context.Context, []vectorstore.DocumentChunk) error {
	return nil
}
func (f *fakeStore) DeleteByDocumentID(context.Context, string) error { return nil }
func (f *fakeStore) SearchSimilar(context.Context, []float32, vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	return nil, nil
}
func (f *fakeStore) SearchHybrid(context.Context, string, []float32, vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	return nil, nil
}
func (f *fakeStore) GetStats(context.Context) (vectorstore.Stats, error) {
	if f.err != nil {
		return vectorstore.Stats{}, f.err
	}
	return f.stats, nil
}
func (f *fakeStore) Close() error { return nil }

// fakeValidator implements TokenValidator for tests.
type fakeValidator struct {
	user chatagent.AuthenticatedUser
	err  error
}

func (f *fakeValidator) ValidateUser(_ context.Context, _ string) (chatagent.AuthenticatedUser, error) {
	if f.err != nil {
		return chatagent.AuthenticatedUser{}, f.err
	}
	return f.user, nil
}

// newTestServer builds a minimally-wired *Server backed entirely by fakes,
// with a fresh isolated metrics registry so tests never pollute
// prometheus.DefaultRegisterer.
func newTestServer() *Server {
	return &Server{
		chat:      &fakeChatHandler{},
		profiles:  &fakeProfiles{},
		indexer:   &fakeIndexRunner{},
		store:     &fakeStore{},
		previewer: &fakeCandidateLister{},
		cfg:       &Config{},
		log:       slog.Default(),
		metrics:   newServerMetrics(prometheus.NewRegistry()),
	}
}
