package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/kagent-go/internal/chatagent"
	"github.com/54b3r/kagent-go/internal/docprovider"
	"github.com/54b3r/kagent-go/internal/indexer"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 3000, per DEFAULT_SEARCH_MODE's
	// neighboring PORT key).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// Validator authenticates inbound Bearer tokens and resolves the caller's
	// identity and delegated credential. If nil, authentication is disabled
	// (development mode) — every request is treated as anonymous and chat
	// requests that require a credential fail at the tool layer instead.
	Validator TokenValidator
	// Registry is the Prometheus registry metrics are registered against and
	// GET /metrics is served from. If nil, a fresh registry is created.
	Registry *prometheus.Registry
}

// chatHandler is the interface handleChat calls. *chatagent.ChatAgent
// satisfies it; tests inject a fake.
type chatHandler interface {
	Handle(ctx context.Context, req chatagent.ChatRequest) (chatagent.ChatResponse, error)
}

// profileProvider is the interface handleMe calls to resolve the caller's
// directory profile with their own delegated credential.
type profileProvider interface {
	GetUserProfile(ctx context.Context, userCreds docprovider.CredentialSource) (docprovider.UserProfile, error)
}

// indexRunner is the interface the admin indexer endpoints call.
// *indexer.Scheduler satisfies it.
type indexRunner interface {
	RunNow(ctx context.Context, opts indexer.RunOptions) (indexer.Result, bool)
}

// Server is the HTTP server that wraps the chat agent and the knowledge
// indexer's admin surface.
type Server struct {
	// chat handles POST /api/chat; set to a *chatagent.ChatAgent in
	// production, overridden by a fake in tests.
	chat chatHandler
	// profiles resolves GET /api/me; set to the same *docprovider.Client the
	// chat agent's tools use.
	profiles profileProvider
	// indexer runs the admin-triggered indexing passes.
	indexer indexRunner
	// store answers GET /api/admin/knowledge-indexer/stats directly, since
	// stats require no per-document work the scheduler's singleton guard
	// needs to protect.
	store vectorstore.Store
	// previewer lists indexing candidates for GET .../preview without
	// running the extract/chunk/embed/upsert steps.
	previewer candidateLister
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the registered Prometheus collectors.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// candidateLister is the subset of docprovider.Client the preview endpoint
// depends on, narrowed so tests can substitute a fake without a live provider.
type candidateLister interface {
	Search(ctx context.Context, opts docprovider.SearchOptions) ([]docprovider.KnowledgeDocument, error)
}

// chatRequestBody is the JSON body for POST /api/chat.
type chatRequestBody struct {
	Messages []chatagent.ChatMessage `json:"messages"`
	Context  chatagent.ChatContext   `json:"context"`
}

// previewDocument is one entry in the GET .../preview response.
type previewDocument struct {
	ID           string `json:"documentId"`
	Title        string `json:"title"`
	WebURL       string `json:"webUrl"`
	FileType     string `json:"fileType"`
	LastModified string `json:"lastModified"`
	SiteURL      string `json:"siteUrl"`
}

// previewResponse is the JSON response for GET .../preview.
type previewResponse struct {
	Candidates []previewDocument `json:"candidates"`
	Total      int               `json:"total"`
}

// indexerRunResponse is the JSON response for POST .../run and .../test.
type indexerRunResponse struct {
	Started            bool     `json:"started"`
	DocumentsFound     int      `json:"documentsFound,omitempty"`
	DocumentsProcessed int      `json:"documentsProcessed,omitempty"`
	ChunksCreated      int      `json:"chunksCreated,omitempty"`
	Errors             []string `json:"errors,omitempty"`
	DurationMs         int64    `json:"durationMs,omitempty"`
}

// statsResponse is the JSON response for GET .../stats.
type statsResponse struct {
	DocumentCount int64 `json:"documentCount"`
	StorageSize   int64 `json:"storageSize"`
}

// profileResponse is the JSON response for GET /api/me.
type profileResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Title      string `json:"title,omitempty"`
	Department string `json:"department,omitempty"`
	Company    string `json:"company,omitempty"`
	Location   string `json:"location,omitempty"`
	Manager    string `json:"manager,omitempty"`
}
