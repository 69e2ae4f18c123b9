// Package cli provides the cobra command tree for the corpus tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services used by the commands. Populated once by ensureServices on first
// use; tests inject mocks directly.
var (
	ingestService     driving.IngestService
	retrievalService  driving.RetrievalService
	collectionService driving.CollectionService
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Document knowledge base with grounded question answering",
	Long: `corpus ingests documents into vector collections and answers
questions strictly from the stored content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.corpus/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
