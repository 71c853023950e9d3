package llm

import (
	"strings"
	"testing"

	"github.com/54b3r/kagent-go/internal/config"
)

func Test_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name: "azure/valid",
			cfg: config.Config{
				Model:       config.ModelConfig{Provider: "azure"},
				AzureOpenAI: config.AzureOpenAIConfig{APIKey: "key", Endpoint: "https://x.openai.azure.com", Deployment: "gpt-4o"},
			},
		},
		{
			name:    "azure/missing api key",
			cfg:     config.Config{Model: config.ModelConfig{Provider: "azure"}, AzureOpenAI: config.AzureOpenAIConfig{Endpoint: "https://x", Deployment: "gpt-4o"}},
			wantErr: "AZURE_OPENAI_API_KEY",
		},
		{
			name:    "azure/missing endpoint",
			cfg:     config.Config{Model: config.ModelConfig{Provider: "azure"}, AzureOpenAI: config.AzureOpenAIConfig{APIKey: "key", Deployment: "gpt-4o"}},
			wantErr: "AZURE_OPENAI_ENDPOINT",
		},
		{
			name: "openai/valid",
			cfg: config.Config{
				Model: config.ModelConfig{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o"}},
			},
		},
		{
			name:    "openai/missing model",
			cfg:     config.Config{Model: config.ModelConfig{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "sk-test"}}},
			wantErr: "OPENAI_MODEL",
		},
		{
			name: "ollama/valid",
			cfg:  config.Config{Model: config.ModelConfig{Provider: "ollama", Ollama: config.OllamaConfig{Host: "http://localhost:11434", Model: "llama3"}}},
		},
		{
			name:    "ollama/missing model",
			cfg:     config.Config{Model: config.ModelConfig{Provider: "ollama"}},
			wantErr: "OLLAMA_MODEL",
		},
		{
			name:    "unknown backend",
			cfg:     config.Config{Model: config.ModelConfig{Provider: "bedrock"}},
			wantErr: "unknown backend",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(&tc.cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func Test_IsReasoningModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		deployment string
		want       bool
	}{
		{"o1", true},
		{"o1-preview", true},
		{"o3-mini", true},
		{"O3-Mini", true},
		{"codex-mini", true},
		{"gpt-4o", false},
		{"gpt-4.1", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := isReasoningModel(tc.deployment); got != tc.want {
			t.Errorf("isReasoningModel(%q) = %v, want %v", tc.deployment, got, tc.want)
		}
	}
}
