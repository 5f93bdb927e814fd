package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfim/fandomap/internal/catalog"
	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/fuzzy"
)

type resolveResult struct {
	Input   string `json:"input"`
	Matched bool   `json:"matched"`
	Stage   string `json:"stage"`
	ID      string `json:"uuid,omitempty"`
	Name    string `json:"displayName,omitempty"`
}

type segmentResult struct {
	Input  string              `json:"input"`
	Tokens []string            `json:"tokens"`
	Groups []fandom.ParenGroup `json:"groups"`
}

func seedFlag(cmd *cobra.Command, seedPath string) string {
	if cmd.Flags().Changed("seed") {
		return seedPath
	}
	return cfg.SeedPath
}

func createResolveCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "resolve <string>...",
		Short: "Resolve fandom names against the seed registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadSeed(seedFlag(cmd, seedPath))
			if err != nil {
				return fmt.Errorf("failed to load seed: %w", err)
			}
			engine := newEngine(reg)

			results := make([]resolveResult, 0, len(args))
			for _, arg := range args {
				r := resolveResult{Input: arg, Stage: fandom.StageNone.String()}
				q := strings.ToLower(catalog.Normalize(arg))
				if rec, stage, ok := engine.Lookup(q); ok {
					r.Matched = true
					r.Stage = stage.String()
					r.ID = rec.ID
					r.Name = rec.DisplayName
				}
				results = append(results, r)
			}

			if outputCfg.JSON {
				PrintResult(results)
				return nil
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Input, r.Stage, r.Name})
			}
			PrintTable([]string{"INPUT", "STAGE", "FANDOM"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "curated fandom seed (JSON)")
	return cmd
}

func createSegmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segment <string>",
		Short: "Show how a fandom string splits into tokens and groups",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			s := strings.ToLower(catalog.Normalize(args[0]))
			res := segmentResult{
				Input:  args[0],
				Tokens: fandom.SplitTopLevel(fandom.StripParentheticals(s)),
				Groups: fandom.ExtractGroups(s),
			}
			if res.Tokens == nil {
				res.Tokens = []string{}
			}

			if outputCfg.JSON {
				PrintResult(res)
				return
			}

			PrintInfo("Tokens:\n")
			for _, tok := range res.Tokens {
				PrintInfo("  %s\n", tok)
			}
			if len(res.Groups) > 0 {
				PrintInfo("Groups:\n")
				for _, g := range res.Groups {
					PrintInfo("  %s ( %s )\n", g.Parent, g.Content)
				}
			}
		},
	}
}

func createSuggestCmd() *cobra.Command {
	var (
		seedPath string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "suggest <name>",
		Short: "List the seed fandoms closest to a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadSeed(seedFlag(cmd, seedPath))
			if err != nil {
				return fmt.Errorf("failed to load seed: %w", err)
			}

			q := strings.ToLower(catalog.Normalize(args[0]))
			candidates := fuzzy.Nearest(q, reg.DisplayNames(), limit)

			if outputCfg.JSON {
				PrintResult(candidates)
				return nil
			}

			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				rows = append(rows, []string{
					c.Name,
					strconv.Itoa(c.Distance),
					strconv.FormatFloat(c.Confidence, 'f', 2, 64),
				})
			}
			PrintTable([]string{"NAME", "DISTANCE", "CONFIDENCE"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "curated fandom seed (JSON)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of suggestions")
	return cmd
}
