// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/endoverdosing/vyla-api/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration (defaults + file + env)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.load(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			source := opts.resolvedConfigPath()
			if source == "" {
				source = "environment"
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", source)
			return err
		},
	})

	var format string
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return dumpConfig(cmd.OutOrStdout(), cfg, format)
		},
	}
	dump.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	cmd.AddCommand(dump)

	return cmd
}

func dumpConfig(w io.Writer, cfg config.AppConfig, format string) error {
	masked := config.MaskSecrets(cfg)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(masked); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(masked); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use yaml or json)", format)
	}
}
