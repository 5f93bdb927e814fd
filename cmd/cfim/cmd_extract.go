package main

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cfim/fandomap/internal/catalog"
	"github.com/cfim/fandomap/internal/db"
	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
	"github.com/cfim/fandomap/internal/metrics"
)

// extractSummary is printed after a successful run.
type extractSummary struct {
	Circles     int          `json:"circles"`
	Fandoms     int          `json:"fandoms"`
	Stands      int          `json:"stands"`
	Stats       fandom.Stats `json:"stats"`
	OutDir      string       `json:"out_dir"`
	DBPath      string       `json:"db_path,omitempty"`
	MetricsFile string       `json:"metrics_file,omitempty"`
}

func createExtractCmd() *cobra.Command {
	var (
		seedPath    string
		outDir      string
		dbPath      string
		saveDB      bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "extract <catalog.json>",
		Short: "Extract circles, fandoms and stands from a catalog",
		Long: `Decomposes every circle's fandom fields against the seed registry and
writes circles.json, fandoms.json and stands.json to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("seed") {
				seedPath = cfg.SeedPath
			}
			if !cmd.Flags().Changed("out") {
				outDir = cfg.GetOutDir()
			}
			if cmd.Flags().Changed("db") {
				saveDB = true
			} else {
				dbPath = cfg.GetDBPath()
			}
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = cfg.Metrics.Textfile
			}

			circles, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			reg, err := loadSeed(seedPath)
			if err != nil {
				return fmt.Errorf("failed to load seed: %w", err)
			}
			engine := newEngine(reg)

			var bar *progressbar.ProgressBar
			if !outputCfg.Quiet && !outputCfg.JSON {
				bar = progressbar.Default(int64(len(circles)), "Resolving fandoms")
			}

			res, err := catalog.Extract(ctx, circles, engine, catalog.Options{
				Logger: logging.Get(),
				OnProgress: func(phase catalog.Phase, done, _ int) {
					if bar != nil && phase == catalog.PhaseFandoms {
						_ = bar.Set(done)
					}
				},
			})
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			if err := catalog.WriteJSON(outDir, res); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			summary := extractSummary{
				Circles: len(res.Circles),
				Fandoms: len(res.Fandoms),
				Stands:  len(res.Stands),
				Stats:   res.Stats,
				OutDir:  outDir,
			}

			if saveDB {
				database, err := db.Open(ctx, dbPath)
				if err != nil {
					return err
				}
				defer func() { _ = database.Close() }()

				if err := database.Save(ctx, res); err != nil {
					return fmt.Errorf("failed to save to database: %w", err)
				}
				summary.DBPath = dbPath
			}

			if metricsFile != "" {
				if err := metrics.WriteTextfile(metricsFile); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
				summary.MetricsFile = metricsFile
			}

			if outputCfg.JSON {
				PrintResult(summary)
				return nil
			}

			PrintInfo("Circles:  %d\n", summary.Circles)
			PrintInfo("Fandoms:  %d (%d new, %d typos captured, %d edges)\n",
				summary.Fandoms, res.Stats.Registered, res.Stats.TyposCaptured, res.Stats.EdgesAdded)
			PrintInfo("Stands:   %d\n", summary.Stands)
			if res.Stats.GroupsSkipped > 0 {
				PrintInfo("Skipped:  %d groups without a parent\n", res.Stats.GroupsSkipped)
			}
			PrintInfo("Output:   %s\n", filepath.Clean(outDir))
			if summary.DBPath != "" {
				PrintInfo("Database: %s\n", summary.DBPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "curated fandom seed (JSON)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().StringVar(&dbPath, "db", "", "also save results to this SQLite database")
	cmd.Flags().BoolVar(&saveDB, "save-db", false, "save results to the configured database")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}
