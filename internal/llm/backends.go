package llm

import (
	"context"
	"strings"

	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/54b3r/kagent-go/internal/config"
)

// reasoningPrefixes lists Azure OpenAI deployment name prefixes that
// identify reasoning models, which reject temperature/top_p/max_tokens.
var reasoningPrefixes = []string{"o1", "o2", "o3", "o4", "codex"}

func isReasoningModel(deployment string) bool {
	lower := strings.ToLower(deployment)
	for _, prefix := range reasoningPrefixes {
		if lower == prefix || strings.HasPrefix(lower, prefix+"-") || strings.HasPrefix(lower, prefix+".") {
			return true
		}
	}
	return false
}

func newOllama(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	return einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{
		BaseURL: cfg.Model.Ollama.Host,
		Model:   cfg.Model.Ollama.Model,
	})
}

func newOpenAI(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	maxTokens := cfg.Model.MaxTokens
	temp := cfg.Model.Temperature
	return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		Model:       cfg.Model.OpenAI.Model,
		APIKey:      cfg.Model.OpenAI.APIKey,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
	})
}

// newAzure constructs a ToolCallingChatModel backed by Azure OpenAI Service.
// Reasoning-model detection is automatic from the deployment name; reasoning
// models use MaxCompletionTokens instead of MaxTokens/Temperature.
func newAzure(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	maxTokens := cfg.Model.MaxTokens
	temp := cfg.Model.Temperature

	azureCfg := &einoopenai.ChatModelConfig{
		Model:      cfg.AzureOpenAI.Deployment,
		APIKey:     cfg.AzureOpenAI.APIKey,
		BaseURL:    cfg.AzureOpenAI.Endpoint,
		ByAzure:    true,
		APIVersion: cfg.AzureOpenAI.APIVersion,
		// Use the deployment name as-is; the default mapper strips dots and
		// colons, which breaks names like "gpt-4.1".
		AzureModelMapperFunc: func(m string) string { return m },
	}
	if isReasoningModel(cfg.AzureOpenAI.Deployment) {
		azureCfg.MaxCompletionTokens = &maxTokens
	} else {
		azureCfg.MaxTokens = &maxTokens
		azureCfg.Temperature = &temp
	}
	return einoopenai.NewChatModel(ctx, azureCfg)
}
