// Package chatagent's agent.go wires a mode-specific tool set into a
// per-request Eino ReAct loop, rebuilding the tool list (and therefore the
// reactAgent itself) fresh on every call, since the tools here close over
// per-request state — the caller's credential, site, and permission cache —
// that a process-lifetime agent must never share between requests.
package chatagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/kagent-go/internal/budget"
	"github.com/54b3r/kagent-go/internal/extractor"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

const (
	defaultRAGTopK               = 5
	defaultToolCallTimeout       = 30 * time.Second
	defaultChatCompletionTimeout = 120 * time.Second
)

// Config holds the dependencies required to construct a ChatAgent.
type Config struct {
	ChatModel model.ToolCallingChatModel
	Store     vectorstore.Store
	Provider  Provider
	Embed     Embedder
	Pages     extractor.PageFetcher

	RAGTopK           int
	UseHybrid         bool
	DefaultSearchMode SearchMode

	ToolCallTimeout       time.Duration
	ChatCompletionTimeout time.Duration
	MaxContextTokens      int
}

// ChatAgent drives retrieval-augmented chat turns. It holds no reactAgent
// of its own — only the ingredients to build one per request.
type ChatAgent struct {
	chatModel model.ToolCallingChatModel
	store     vectorstore.Store
	provider  Provider
	embed     Embedder
	pages     extractor.PageFetcher

	ragTopK           int
	useHybrid         bool
	defaultSearchMode SearchMode

	toolCallTimeout       time.Duration
	chatCompletionTimeout time.Duration
	maxContextTokens      int
}

// New constructs a ChatAgent from cfg.
func New(cfg Config) (*ChatAgent, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("chatagent: ChatModel must not be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("chatagent: Store must not be nil")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("chatagent: Provider must not be nil")
	}

	topK := cfg.RAGTopK
	if topK <= 0 {
		topK = defaultRAGTopK
	}
	defaultMode := cfg.DefaultSearchMode
	if defaultMode == "" {
		defaultMode = ModeKQL
	}
	toolTimeout := cfg.ToolCallTimeout
	if toolTimeout <= 0 {
		toolTimeout = defaultToolCallTimeout
	}
	chatTimeout := cfg.ChatCompletionTimeout
	if chatTimeout <= 0 {
		chatTimeout = defaultChatCompletionTimeout
	}
	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	return &ChatAgent{
		chatModel:             cfg.ChatModel,
		store:                 cfg.Store,
		provider:              cfg.Provider,
		embed:                 cfg.Embed,
		pages:                 cfg.Pages,
		ragTopK:               topK,
		useHybrid:             cfg.UseHybrid,
		defaultSearchMode:     defaultMode,
		toolCallTimeout:       toolTimeout,
		chatCompletionTimeout: chatTimeout,
		maxContextTokens:      maxCtx,
	}, nil
}

// resolveMode returns the requested search mode if it is recognized,
// otherwise falls back to the agent's configured default.
func (a *ChatAgent) resolveMode(requested SearchMode) SearchMode {
	if requested == ModeRAG || requested == ModeKQL {
		return requested
	}
	return a.defaultSearchMode
}

// Handle drives one full chat turn: resolves the retrieval mode, builds a
// fresh tool set and ReAct agent scoped to this request, runs the
// tool-calling loop to completion, and returns the updated conversation.
func (a *ChatAgent) Handle(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if len(req.Messages) == 0 {
		return ChatResponse{}, fmt.Errorf("chatagent: Messages must contain at least the pending user turn")
	}

	mode := a.resolveMode(req.Context.SearchMode)
	ts := newToolset(a, req)
	tools := ts.build(mode)

	reactAgent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: a.chatModel,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: tools},
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chatagent: failed to create ReAct agent: %w", err)
	}

	messages := a.buildMessages(req, mode)

	completionCtx, cancel := context.WithTimeout(ctx, a.chatCompletionTimeout)
	defer cancel()

	sr, err := reactAgent.Stream(completionCtx, messages)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chatagent: stream failed: %w", err)
	}
	defer sr.Close()

	var buf strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ChatResponse{}, fmt.Errorf("chatagent: stream receive error: %w", err)
		}
		if msg != nil && msg.Content != "" {
			buf.WriteString(msg.Content)
		}
	}

	response := buf.String()
	updated := make([]ChatMessage, len(req.Messages), len(req.Messages)+1)
	copy(updated, req.Messages)
	updated = append(updated, ChatMessage{Role: "assistant", Content: response})

	return ChatResponse{Response: response, Messages: updated, SearchMode: mode}, nil
}

// buildMessages composes the system prompt, trims the prior conversation to
// the token budget via budget.TrimHistory, and appends the pending user
// turn. There are no RAG/workspace context blocks to interleave — retrieval
// happens inside the knowledge_search tool, not as an injected system
// message.
func (a *ChatAgent) buildMessages(req ChatRequest, mode SearchMode) []*schema.Message {
	systemMsg := schema.SystemMessage(buildSystemPrompt(req.User, req.Context, mode))

	pending := req.Messages[len(req.Messages)-1]
	pendingMsg := toSchemaMessage(pending)

	var history []*schema.Message
	for _, m := range req.Messages[:len(req.Messages)-1] {
		history = append(history, toSchemaMessage(m))
	}

	fixed := []*schema.Message{systemMsg, pendingMsg}
	history = budget.TrimHistory(fixed, history, a.maxContextTokens)

	result := make([]*schema.Message, 0, 2+len(history))
	result = append(result, systemMsg)
	result = append(result, history...)
	result = append(result, pendingMsg)
	return result
}

func toSchemaMessage(m ChatMessage) *schema.Message {
	switch m.Role {
	case "assistant":
		return schema.AssistantMessage(m.Content, nil)
	case "system":
		return schema.SystemMessage(m.Content)
	default:
		return schema.UserMessage(m.Content)
	}
}
