package main

import (
	"github.com/spf13/cobra"
	"github.com/vango-dev/bindvar/internal/config"
)

func configCmd() *cobra.Command {
	var (
		configPath string
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration serve would run with, after defaults, the
config file and BINDVAR_* variables are merged.

With --output the result is written to a file instead. The file format
follows its extension.`,
		Example: `  bindvar config
  bindvar config --format json
  bindvar config --config base.yaml --output bindvar.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if output != "" {
				if err := cfg.SaveTo(output); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Wrote %s", output)
				return nil
			}
			return cfg.Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (yaml or json)")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}
