// Package llm selects and constructs the LLM chat backend used by the chat
// agent's ReAct loop. Bedrock and Gemini backends are not supported (see
// DESIGN.md).
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/54b3r/kagent-go/internal/config"
)

// Backend enumerates the supported chat model providers.
type Backend string

const (
	BackendAzure  Backend = "azure"
	BackendOpenAI Backend = "openai"
	BackendOllama Backend = "ollama"
)

// Validate checks that the fields required by cfg.Model.Provider are
// populated, so a misconfigured deployment fails at startup rather than on
// the first chat request.
func Validate(cfg *config.Config) error {
	switch Backend(cfg.Model.Provider) {
	case BackendAzure:
		if cfg.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("llm: azure backend requires AZURE_OPENAI_API_KEY")
		}
		if cfg.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("llm: azure backend requires AZURE_OPENAI_ENDPOINT")
		}
		if cfg.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("llm: azure backend requires AZURE_OPENAI_DEPLOYMENT")
		}
	case BackendOpenAI:
		if cfg.Model.OpenAI.APIKey == "" {
			return fmt.Errorf("llm: openai backend requires OPENAI_API_KEY")
		}
		if cfg.Model.OpenAI.Model == "" {
			return fmt.Errorf("llm: openai backend requires OPENAI_MODEL")
		}
	case BackendOllama:
		if cfg.Model.Ollama.Model == "" {
			return fmt.Errorf("llm: ollama backend requires OLLAMA_MODEL")
		}
	default:
		return fmt.Errorf("llm: unknown backend %q — valid values: azure, openai, ollama", cfg.Model.Provider)
	}
	return nil
}

// New constructs a ToolCallingChatModel for the backend named by
// cfg.Model.Provider.
func New(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	switch Backend(cfg.Model.Provider) {
	case BackendAzure:
		return newAzure(ctx, cfg)
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", cfg.Model.Provider)
	}
}
