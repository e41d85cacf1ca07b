// Command clirctl is the operator CLI: bulk-load crawled corpora into the
// ingest topic, inspect translation resources, and run offline searches
// against a corpus without any services running.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arefin-labs/clir-engine/pkg/config"
	"github.com/arefin-labs/clir-engine/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:           "clirctl",
		Short:         "Operator tooling for the cross-lingual retrieval engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger.Setup(logLevel, "text")
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newCorpusCmd(func() *config.Config { return cfg }),
		newDictCmd(func() *config.Config { return cfg }),
		newSearchCmd(func() *config.Config { return cfg }),
	)
	return root
}
