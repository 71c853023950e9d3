// Package commands defines all Cobra CLI commands for the kagent binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/kagent-go/internal/audit"
	"github.com/54b3r/kagent-go/internal/config"
	"github.com/54b3r/kagent-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kagent",
		Short: "kagent — retrieval-augmented knowledge chat agent and document indexer",
		Long: `kagent indexes documents from a document platform into a vector store
and serves a retrieval-augmented chat agent that answers questions against
that index, honoring each user's own document permissions.

Model and embedding providers are selected via environment variables or a
YAML config file (~/.kagent/config.yaml). See 'kagent --help' for available
commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.kagent/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIndexCmd(),
		NewVersionCmd(),
	)

	return root
}
