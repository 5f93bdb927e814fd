package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/baggage"

	"github.com/cfim/fandomap/internal/config"
	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
	"github.com/cfim/fandomap/internal/tracing"
)

const version = "0.3.0"

var cfg *config.Config

func main() {
	ctx := context.Background()

	m, _ := baggage.NewMember("app.version", version)
	b, _ := baggage.New(m)
	ctx = baggage.ContextWithBaggage(ctx, b)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		PrintError("Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var shutdown func(context.Context) error

	rootCmd := &cobra.Command{
		Use:           "cfim",
		Short:         "Comic Frontier catalog fandom mapper",
		Long:          `Resolves the free-text fandom fields of a convention catalog into a linked fandom registry.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			var err error
			cfg, err = config.Load()
			if err != nil {
				PrintError("Warning: failed to load config: %v\n", err)
				cfg = config.DefaultConfig()
			}

			logging.Setup(cfg.Logging)

			shutdown, err = tracing.Setup(cmd.Context(), tracing.DefaultConfig())
			if err != nil {
				logging.Error("failed to setup tracing", "error", err)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if shutdown == nil {
				return
			}
			if err := shutdown(cmd.Context()); err != nil {
				logging.Error("failed to shutdown tracing", "error", err)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&outputCfg.JSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&outputCfg.Quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(createExtractCmd())
	rootCmd.AddCommand(createResolveCmd())
	rootCmd.AddCommand(createSegmentCmd())
	rootCmd.AddCommand(createSuggestCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd
}

// loadSeed returns the curated registry at path, or an empty registry when
// no seed is configured.
func loadSeed(path string) (*fandom.Registry, error) {
	if path == "" {
		return fandom.NewRegistry(), nil
	}
	return fandom.LoadSeedFile(path)
}

func newEngine(reg *fandom.Registry) *fandom.Engine {
	return fandom.NewEngine(reg, cfg.ResolverConfig(), logging.Get())
}
