package server

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/qdrant/go-client/qdrant"

	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// LLMPinger probes the chat model backend by sending a minimal single-token
// generate request. It satisfies the Pinger interface and is used by
// GET /api/ready. This burns a small number of tokens on every readiness
// probe; callers that poll /api/ready frequently should budget for it.
type LLMPinger struct {
	model model.ToolCallingChatModel
	name  string
}

// NewLLMPinger constructs an LLMPinger for the given model and backend name.
func NewLLMPinger(m model.ToolCallingChatModel, name string) *LLMPinger {
	return &LLMPinger{model: m, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *LLMPinger) Name() string { return p.name }

// Ping sends a single-token "ping" prompt and checks for a non-nil response.
func (p *LLMPinger) Ping(ctx context.Context) error {
	resp, err := p.model.Generate(ctx, []*schema.Message{schema.UserMessage("ping")})
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("generate returned nil response")
	}
	return nil
}

// QdrantPinger probes a Qdrant instance using its native HealthCheck RPC.
// Only relevant when VECTOR_STORE_BACKEND=qdrant; the production Azure AI
// Search backend is probed via VectorStorePinger instead.
type QdrantPinger struct {
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	if _, err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// VectorStorePinger probes any vectorstore.Store backend by requesting its
// stats — the cheapest read every backend (Qdrant, Azure AI Search) already
// implements, so no backend-specific health RPC is needed here.
type VectorStorePinger struct {
	store vectorstore.Store
}

// NewVectorStorePinger constructs a VectorStorePinger for the given Store.
func NewVectorStorePinger(store vectorstore.Store) *VectorStorePinger {
	return &VectorStorePinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *VectorStorePinger) Name() string { return "vectorstore" }

// Ping calls GetStats and treats any error as unreachable.
func (p *VectorStorePinger) Ping(ctx context.Context) error {
	if _, err := p.store.GetStats(ctx); err != nil {
		return fmt.Errorf("get stats failed: %w", err)
	}
	return nil
}
