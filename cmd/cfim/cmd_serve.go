package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cfim/fandomap/internal/api"
	"github.com/cfim/fandomap/internal/catalog"
	"github.com/cfim/fandomap/internal/db"
	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
)

func createServeCmd() *cobra.Command {
	var (
		addr        string
		fandomsPath string
		dbPath      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only fandom API",
		Long: `Loads an extracted fandoms.json (or a saved database with --db) and
serves it over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.GetAddr()
			}
			if fandomsPath == "" {
				fandomsPath = filepath.Join(cfg.GetOutDir(), catalog.FandomsFile)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg, err := loadServedRegistry(ctx, fandomsPath, dbPath)
			if err != nil {
				return err
			}

			srv := api.NewServer(addr, newEngine(reg), logging.Get())
			PrintInfo("Serving %d fandoms on http://%s\n", reg.Len(), srv.Addr())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&fandomsPath, "fandoms", "", "fandoms.json to serve (default <out_dir>/fandoms.json)")
	cmd.Flags().StringVar(&dbPath, "db", "", "serve fandoms from this SQLite database instead")
	return cmd
}

func loadServedRegistry(ctx context.Context, fandomsPath, dbPath string) (*fandom.Registry, error) {
	if dbPath == "" {
		reg, err := fandom.LoadRecordsFile(fandomsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load fandoms: %w", err)
		}
		return reg, nil
	}

	database, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close() }()

	recs, err := database.LoadFandoms(ctx)
	if err != nil {
		return nil, err
	}
	return fandom.NewRegistryFromRecords(recs, false)
}
