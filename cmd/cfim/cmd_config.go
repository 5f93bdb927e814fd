package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/cfim/fandomap/internal/config"
)

const defaultConfigPath = ".cfim.yaml"

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}
	cmd.AddCommand(createConfigShowCmd())
	cmd.AddCommand(createConfigInitCmd())
	return cmd
}

func createConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show active configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if outputCfg.JSON {
				PrintResult(cfg)
				return nil
			}

			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			PrintInfo("# Active Configuration\n%s", data)
			return nil
		},
	}
}

func createConfigInitCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := config.DefaultConfig().WriteFile(path)
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("config file already exists at %s", path)
			}
			if err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			if outputCfg.JSON {
				PrintResult(map[string]string{"path": path, "status": "created"})
			} else {
				PrintInfo("Created config file: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", defaultConfigPath, "config file to create")
	return cmd
}
