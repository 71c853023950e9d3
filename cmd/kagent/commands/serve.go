package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/54b3r/kagent-go/internal/chatagent"
	"github.com/54b3r/kagent-go/internal/chunker"
	"github.com/54b3r/kagent-go/internal/config"
	"github.com/54b3r/kagent-go/internal/embedder"
	"github.com/54b3r/kagent-go/internal/indexer"
	"github.com/54b3r/kagent-go/internal/llm"
	"github.com/54b3r/kagent-go/internal/logging"
	"github.com/54b3r/kagent-go/internal/server"
	"github.com/54b3r/kagent-go/internal/tracing"
	"github.com/54b3r/kagent-go/internal/vectorstore"
)

// NewServeCmd constructs the `kagent serve` command, which starts the HTTP
// server exposing the chat and indexing admin API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kagent HTTP server",
		Long: `Start the kagent HTTP server on localhost.

The server exposes the chat agent at POST /api/chat, the caller's directory
profile at GET /api/me, and the knowledge indexer's admin surface under
/api/admin/knowledge-indexer/.

The indexer scheduler guards against overlapping passes only within this
process; run a single serving instance with KNOWLEDGE_INDEXER_ENABLED=true.

Examples:
  kagent serve
  kagent serve --port 9090
  MODEL_PROVIDER=azure kagent serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			cfg := config.FromEnv()
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("serve: langfuse tracing enabled")
			} else {
				log.Info("serve: langfuse tracing disabled (LANGFUSE_PUBLIC_KEY not set)")
			}

			chatModel, err := llm.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise chat model: %w", err)
			}
			log.Info("serve: chat model initialised", slog.String("provider", cfg.Model.Provider))

			docClient, err := newDocProviderClient(cfg)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			store, err := vectorstore.NewFromConfig(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise vector store: %w", err)
			}
			log.Info("serve: vector store ready", slog.String("backend", cfg.VectorStore.Backend))

			rawEmbedder, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}
			batchEmbedder := embedder.NewBatchEmbedder(rawEmbedder)

			chatAgent, err := chatagent.New(chatagent.Config{
				ChatModel:             chatModel,
				Store:                 store,
				Provider:              docClient,
				Embed:                 batchEmbedder,
				Pages:                 docClient,
				UseHybrid:             cfg.VectorStore.Backend != "qdrant",
				DefaultSearchMode:     chatagent.SearchMode(cfg.Chat.DefaultSearchMode),
				ToolCallTimeout:       time.Duration(cfg.Tuning.ToolCallTimeoutSeconds) * time.Second,
				ChatCompletionTimeout: time.Duration(cfg.Tuning.ChatCompletionTimeoutSeconds) * time.Second,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise chat agent: %w", err)
			}

			pipeline := indexer.New(docClient, docClient, batchEmbedder, store, chunker.DefaultOptions(), log)
			scheduler := indexer.NewScheduler(pipeline, cfg.Indexer.IntervalMs, log)
			if cfg.Indexer.Enabled {
				scheduler.Start(ctx)
				defer scheduler.Stop()
				log.Info("serve: knowledge indexer scheduler started", slog.Int("interval_ms", cfg.Indexer.IntervalMs))
			} else {
				log.Info("serve: knowledge indexer scheduler disabled (admin-triggered runs still available)")
			}

			var validator server.TokenValidator
			if cfg.Identity.TenantID != "" {
				validator = server.NewClaimsValidator(cfg.Identity.TenantID, cfg.Identity.ClientID, cfg.Identity.ClientSecret)
			} else {
				log.Warn("serve: AD_TENANT_ID not set, authentication disabled")
			}

			pingers := []server.Pinger{
				server.NewLLMPinger(chatModel, cfg.Model.Provider),
				server.NewVectorStorePinger(store),
			}

			srv, err := server.New(chatAgent, docClient, scheduler, store, docClient, &server.Config{
				Host:      cfg.Server.Host,
				Port:      cfg.Server.Port,
				Logger:    log,
				Pingers:   pingers,
				Validator: validator,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 3000, "TCP port to listen on")

	return cmd
}
