package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/54b3r/kagent-go/internal/config"
)

// NewFromConfig constructs and schema-bootstraps the Store named by
// cfg.VectorStore.Backend. "qdrant" selects the dev/test backend; anything
// else (including the empty string) selects the production Azure AI Search
// backend.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (Store, error) {
	var store Store

	switch cfg.VectorStore.Backend {
	case "qdrant":
		qc := &QdrantConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.TLS,
		}
		qs, err := NewQdrantStore(qc)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: qdrant: %w", err)
		}
		store = qs

	default:
		if cfg.VectorStore.Endpoint == "" {
			return nil, fmt.Errorf("vectorstore: azuresearch requires AZURE_SEARCH_ENDPOINT")
		}
		if cfg.VectorStore.AdminKey == "" {
			return nil, fmt.Errorf("vectorstore: azuresearch requires AZURE_SEARCH_ADMIN_KEY")
		}
		if cfg.VectorStore.IndexName == "" {
			return nil, fmt.Errorf("vectorstore: azuresearch requires AZURE_SEARCH_INDEX_NAME")
		}
		store = NewAzureSearchStore(&AzureSearchConfig{
			Endpoint:  cfg.VectorStore.Endpoint,
			AdminKey:  cfg.VectorStore.AdminKey,
			IndexName: cfg.VectorStore.IndexName,
		}, log)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("vectorstore: ensure schema: %w", err)
	}
	return store, nil
}
