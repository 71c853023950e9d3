// Package config provides YAML-based configuration for kagent.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so existing workflows are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. KAGENT_CONFIG environment variable
//  3. ~/.kagent/config.yaml
//  4. ./kagent.yaml
//
// If no file is found the system runs entirely from env vars (backwards compatible).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming (lowercase, underscored).
type Config struct {
	// Identity configures the Azure AD application used for app-only and
	// on-behalf-of credential exchange.
	Identity IdentityConfig `yaml:"identity"`

	// AzureOpenAI configures the chat and embedding deployments.
	AzureOpenAI AzureOpenAIConfig `yaml:"azure_openai"`

	// Model configures the LLM chat model backend (azure, openai, ollama).
	Model ModelConfig `yaml:"model"`

	// Embedding configures the embedding backend.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// VectorStore selects and configures the vector index backend.
	VectorStore VectorStoreConfig `yaml:"vector_store"`

	// Qdrant configures the Qdrant dev/test vector store backend.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Indexer configures the periodic indexing pipeline/scheduler.
	Indexer IndexerConfig `yaml:"indexer"`

	// SharePoint configures document-provider specific defaults.
	SharePoint SharePointConfig `yaml:"sharepoint"`

	// Chat configures chat-agent defaults.
	Chat ChatConfig `yaml:"chat"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Tuning configures outbound call timeouts.
	Tuning TuningConfig `yaml:"tuning"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing configures Langfuse tracing integration.
	Tracing TracingConfig `yaml:"tracing"`
}

// IdentityConfig holds Azure AD application credentials used for both
// app-only provider calls and On-Behalf-Of delegated token exchange.
type IdentityConfig struct {
	// TenantID is the Azure AD tenant id.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure AD application (client) id.
	ClientID string `yaml:"client_id"`
	// ClientSecret is the Azure AD application client secret. Prefer env var AD_CLIENT_SECRET.
	ClientSecret string `yaml:"client_secret"`
}

// AzureOpenAIConfig holds Azure OpenAI resource settings shared by the chat
// model and the embedding backend.
type AzureOpenAIConfig struct {
	// Endpoint is the Azure OpenAI resource endpoint.
	Endpoint string `yaml:"endpoint"`
	// APIKey is the Azure OpenAI API key. Prefer env var AZURE_OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// APIVersion is the Azure OpenAI REST API version.
	APIVersion string `yaml:"api_version"`
	// Deployment is the chat-completion deployment name.
	Deployment string `yaml:"deployment"`
	// EmbeddingDeployment is the embedding deployment name.
	EmbeddingDeployment string `yaml:"embedding_deployment"`
}

// ModelConfig holds LLM chat model settings.
type ModelConfig struct {
	// Provider selects the backend: azure, openai, ollama.
	Provider string `yaml:"provider"`
	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int `yaml:"max_tokens"`
	// Temperature controls response randomness (0.0–1.0).
	Temperature float32 `yaml:"temperature"`
	// Ollama holds Ollama-specific settings.
	Ollama OllamaConfig `yaml:"ollama"`
	// OpenAI holds OpenAI-specific settings.
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OllamaConfig holds Ollama provider settings.
type OllamaConfig struct {
	// Host is the Ollama API endpoint.
	Host string `yaml:"host"`
	// Model is the Ollama model name.
	Model string `yaml:"model"`
}

// OpenAIConfig holds native OpenAI provider settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Prefer env var OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the OpenAI model name.
	Model string `yaml:"model"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend (azure, openai, ollama).
	Provider string `yaml:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model"`
	// Dimensions overrides the embedding vector size (default 1536).
	Dimensions int `yaml:"dimensions"`
	// APIKey is the embedding API key. Prefer env var EMBEDDING_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the embedding API endpoint.
	Endpoint string `yaml:"endpoint"`
}

// VectorStoreConfig selects the vector store backend and holds production
// (Azure AI Search) connection settings.
type VectorStoreConfig struct {
	// Backend selects the implementation: "azuresearch" (default, production) or "qdrant" (dev/test).
	Backend string `yaml:"backend"`
	// Endpoint is the Azure AI Search service endpoint.
	Endpoint string `yaml:"endpoint"`
	// AdminKey is the Azure AI Search admin API key. Prefer env var AZURE_SEARCH_ADMIN_KEY.
	AdminKey string `yaml:"admin_key"`
	// IndexName is the target Azure AI Search index name.
	IndexName string `yaml:"index_name"`
}

// QdrantConfig holds Qdrant vector store settings (dev/test backend).
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host"`
	// Port is the Qdrant gRPC port.
	Port int `yaml:"port"`
	// Collection is the Qdrant collection name.
	Collection string `yaml:"collection"`
	// APIKey is the Qdrant API key. Prefer env var QDRANT_API_KEY.
	APIKey string `yaml:"api_key"`
	// TLS enables TLS for the Qdrant connection.
	TLS bool `yaml:"tls"`
}

// IndexerConfig holds periodic indexing pipeline settings.
type IndexerConfig struct {
	// Enabled turns the scheduler on or off at startup.
	Enabled bool `yaml:"enabled"`
	// IntervalMs is the delay between scheduled passes, in milliseconds.
	IntervalMs int `yaml:"interval_ms"`
}

// SharePointConfig holds document-provider specific defaults.
type SharePointConfig struct {
	// Geo is the SharePoint search-region code (e.g. "US").
	Geo string `yaml:"geo"`
}

// ChatConfig holds chat-agent defaults.
type ChatConfig struct {
	// DefaultSearchMode is the fallback retrieval mode ("rag" or "kql") when
	// a chat request omits context.searchMode.
	DefaultSearchMode string `yaml:"default_search_mode"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host"`
	// Port is the TCP port.
	Port int `yaml:"port"`
}

// TuningConfig holds outbound call timeouts.
type TuningConfig struct {
	// ToolCallTimeoutSeconds is passed to the chat agent as its tool-call
	// timeout (default 30); tool invocations are not bounded by it.
	ToolCallTimeoutSeconds int `yaml:"tool_call_timeout_seconds"`
	// ChatCompletionTimeoutSeconds bounds a full chat-completion round-trip (default 120).
	ChatCompletionTimeoutSeconds int `yaml:"chat_completion_timeout_seconds"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// TracingConfig holds Langfuse tracing settings.
type TracingConfig struct {
	// PublicKey is the Langfuse public key. Prefer env var LANGFUSE_PUBLIC_KEY.
	PublicKey string `yaml:"public_key"`
	// SecretKey is the Langfuse secret key. Prefer env var LANGFUSE_SECRET_KEY.
	SecretKey string `yaml:"secret_key"`
	// Host is the Langfuse API host.
	Host string `yaml:"host"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"AD_TENANT_ID", func(c *Config) string { return c.Identity.TenantID }},
	{"AD_CLIENT_ID", func(c *Config) string { return c.Identity.ClientID }},
	{"AD_CLIENT_SECRET", func(c *Config) string { return c.Identity.ClientSecret }},
	{"AZURE_OPENAI_ENDPOINT", func(c *Config) string { return c.AzureOpenAI.Endpoint }},
	{"AZURE_OPENAI_API_KEY", func(c *Config) string { return c.AzureOpenAI.APIKey }},
	{"AZURE_OPENAI_API_VERSION", func(c *Config) string { return c.AzureOpenAI.APIVersion }},
	{"AZURE_OPENAI_DEPLOYMENT", func(c *Config) string { return c.AzureOpenAI.Deployment }},
	{"AZURE_OPENAI_EMBEDDING_DEPLOYMENT", func(c *Config) string { return c.AzureOpenAI.EmbeddingDeployment }},
	{"MODEL_PROVIDER", func(c *Config) string { return c.Model.Provider }},
	{"MODEL_MAX_TOKENS", func(c *Config) string { return intStr(c.Model.MaxTokens) }},
	{"MODEL_TEMPERATURE", func(c *Config) string { return float32Str(c.Model.Temperature) }},
	{"OLLAMA_HOST", func(c *Config) string { return c.Model.Ollama.Host }},
	{"OLLAMA_MODEL", func(c *Config) string { return c.Model.Ollama.Model }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.Model.OpenAI.APIKey }},
	{"OPENAI_MODEL", func(c *Config) string { return c.Model.OpenAI.Model }},
	{"EMBEDDING_PROVIDER", func(c *Config) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"EMBEDDING_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_API_KEY", func(c *Config) string { return c.Embedding.APIKey }},
	{"EMBEDDING_ENDPOINT", func(c *Config) string { return c.Embedding.Endpoint }},
	{"VECTOR_STORE_BACKEND", func(c *Config) string { return c.VectorStore.Backend }},
	{"AZURE_SEARCH_ENDPOINT", func(c *Config) string { return c.VectorStore.Endpoint }},
	{"AZURE_SEARCH_ADMIN_KEY", func(c *Config) string { return c.VectorStore.AdminKey }},
	{"AZURE_SEARCH_INDEX_NAME", func(c *Config) string { return c.VectorStore.IndexName }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_COLLECTION", func(c *Config) string { return c.Qdrant.Collection }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"KNOWLEDGE_INDEXER_ENABLED", func(c *Config) string { return boolStr(c.Indexer.Enabled) }},
	{"KNOWLEDGE_INDEXER_INTERVAL_MS", func(c *Config) string { return intStr(c.Indexer.IntervalMs) }},
	{"SHAREPOINT_GEO", func(c *Config) string { return c.SharePoint.Geo }},
	{"DEFAULT_SEARCH_MODE", func(c *Config) string { return c.Chat.DefaultSearchMode }},
	{"PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"SERVER_HOST", func(c *Config) string { return c.Server.Host }},
	{"TOOL_CALL_TIMEOUT_SECONDS", func(c *Config) string { return intStr(c.Tuning.ToolCallTimeoutSeconds) }},
	{"CHAT_COMPLETION_TIMEOUT_SECONDS", func(c *Config) string { return intStr(c.Tuning.ChatCompletionTimeoutSeconds) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"LANGFUSE_PUBLIC_KEY", func(c *Config) string { return c.Tracing.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *Config) string { return c.Tracing.SecretKey }},
	{"LANGFUSE_HOST", func(c *Config) string { return c.Tracing.Host }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" || yamlVal == "0" || yamlVal == "false" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set — do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("KAGENT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".kagent", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("kagent.yaml"); err == nil {
		return "kagent.yaml"
	}

	return ""
}

// FromEnv builds a Config by reading the env vars that Load applies YAML
// values onto. Call it after Load so that any YAML-sourced values (already
// copied into the environment) are picked up the same way a purely
// env-var-driven deployment would set them.
func FromEnv() *Config {
	return &Config{
		Identity: IdentityConfig{
			TenantID:     os.Getenv("AD_TENANT_ID"),
			ClientID:     os.Getenv("AD_CLIENT_ID"),
			ClientSecret: os.Getenv("AD_CLIENT_SECRET"),
		},
		AzureOpenAI: AzureOpenAIConfig{
			Endpoint:            os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIKey:              os.Getenv("AZURE_OPENAI_API_KEY"),
			APIVersion:          envOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview"),
			Deployment:          os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			EmbeddingDeployment: os.Getenv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT"),
		},
		Model: ModelConfig{
			Provider:    envOrDefault("MODEL_PROVIDER", "ollama"),
			MaxTokens:   envInt("MODEL_MAX_TOKENS", 4096),
			Temperature: envFloat32("MODEL_TEMPERATURE", 0.2),
			Ollama: OllamaConfig{
				Host:  envOrDefault("OLLAMA_HOST", "http://localhost:11434"),
				Model: os.Getenv("OLLAMA_MODEL"),
			},
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  os.Getenv("OPENAI_MODEL"),
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   os.Getenv("EMBEDDING_PROVIDER"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			Dimensions: envInt("EMBEDDING_DIMENSIONS", 0),
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Endpoint:   os.Getenv("EMBEDDING_ENDPOINT"),
		},
		VectorStore: VectorStoreConfig{
			Backend:   envOrDefault("VECTOR_STORE_BACKEND", "azuresearch"),
			Endpoint:  os.Getenv("AZURE_SEARCH_ENDPOINT"),
			AdminKey:  os.Getenv("AZURE_SEARCH_ADMIN_KEY"),
			IndexName: os.Getenv("AZURE_SEARCH_INDEX_NAME"),
		},
		Qdrant: QdrantConfig{
			Host:       envOrDefault("QDRANT_HOST", "localhost"),
			Port:       envInt("QDRANT_PORT", 6334),
			Collection: envOrDefault("QDRANT_COLLECTION", "kagent-docs"),
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			TLS:        os.Getenv("QDRANT_TLS") == "true",
		},
		Indexer: IndexerConfig{
			Enabled:    os.Getenv("KNOWLEDGE_INDEXER_ENABLED") == "true",
			IntervalMs: envInt("KNOWLEDGE_INDEXER_INTERVAL_MS", 0),
		},
		SharePoint: SharePointConfig{
			Geo: envOrDefault("SHAREPOINT_GEO", "US"),
		},
		Chat: ChatConfig{
			DefaultSearchMode: envOrDefault("DEFAULT_SEARCH_MODE", "kql"),
		},
		Server: ServerConfig{
			Host: envOrDefault("SERVER_HOST", "127.0.0.1"),
			Port: envInt("PORT", 3000),
		},
		Tuning: TuningConfig{
			ToolCallTimeoutSeconds:       envInt("TOOL_CALL_TIMEOUT_SECONDS", 30),
			ChatCompletionTimeoutSeconds: envInt("CHAT_COMPLETION_TIMEOUT_SECONDS", 120),
		},
		Logging: LoggingConfig{
			Level:  envOrDefault("LOG_LEVEL", "info"),
			Format: envOrDefault("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			PublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
			SecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
			Host:      os.Getenv("LANGFUSE_HOST"),
		},
	}
}

// envOrDefault returns the env var's value, or fallback if unset.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an env var as an int, returning fallback if unset or invalid.
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envFloat32 parses an env var as a float32, returning fallback if unset or invalid.
func envFloat32(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// float32Str converts a float32 to string, returning "" for zero values.
func float32Str(v float32) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// boolStr converts a bool to string, returning "" for false.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
