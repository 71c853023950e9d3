package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/kagent-go/internal/chunker"
	"github.com/54b3r/kagent-go/internal/config"
	"github.com/54b3r/kagent-go/internal/embedder"
	"github.com/54b3r/kagent-go/internal/indexer"
	"github.com/54b3r/kagent-go/internal/logging"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// NewIndexCmd constructs the `kagent index` command, which runs a single
// search → extract → chunk → embed → upsert pass from the CLI, independent
// of the HTTP server's admin-triggered or scheduled runs.
func NewIndexCmd() *cobra.Command {
	var siteURL string
	var days int
	var skipEmbeddings bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Run one knowledge-indexing pass",
		Long: `Run a single indexing pass over the configured document platform,
extracting, chunking, embedding, and upserting matching documents into the
vector store.

Examples:
  kagent index
  kagent index --site-url https://contoso.sharepoint.com/sites/eng --days 7
  kagent index --skip-embeddings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			cfg := config.FromEnv()

			docClient, err := newDocProviderClient(cfg)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			store, err := vectorstore.NewFromConfig(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("index: failed to initialise vector store: %w", err)
			}
			defer store.Close()

			rawEmbedder, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("index: failed to initialise embedder: %w", err)
			}
			batchEmbedder := embedder.NewBatchEmbedder(rawEmbedder)

			pipeline := indexer.New(docClient, docClient, batchEmbedder, store, chunker.DefaultOptions(), log)

			result, err := pipeline.Run(ctx, indexer.RunOptions{
				SiteURL:        siteURL,
				DaysBack:       days,
				SkipEmbeddings: skipEmbeddings,
			})
			if err != nil {
				return fmt.Errorf("index: pipeline failed: %w", err)
			}

			log.Info("index: pass complete",
				slog.Int("documents_found", result.DocumentsFound),
				slog.Int("documents_processed", result.DocumentsProcessed),
				slog.Int("chunks_created", result.ChunksCreated),
				slog.Int("errors", len(result.Errors)),
				slog.Int64("duration_ms", result.DurationMs),
			)
			for _, docErr := range result.Errors {
				log.Warn("index: document failed", slog.String("title", docErr.Title), slog.String("error", docErr.Err))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&siteURL, "site-url", "", "Restrict indexing to a single site URL (default: no site restriction)")
	cmd.Flags().IntVar(&days, "days", 0, "Only index documents modified within the last N days (0 uses the 30-day default)")
	cmd.Flags().BoolVar(&skipEmbeddings, "skip-embeddings", false, "Run extraction and chunking without generating or upserting embeddings")

	return cmd
}
