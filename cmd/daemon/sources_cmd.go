package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/endoverdosing/vyla-api/internal/player"
)

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the player sources in display order",
		Long:  "Validate and list the player source table. Without --file the configured table (or the built-in one) is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := file
			if path == "" {
				cfg, _ := opts.load()
				path = cfg.Player.SourcesFile
			}
			catalog, err := player.Load(afero.NewOsFs(), path)
			if err != nil {
				return err
			}
			return printSources(cmd, catalog, asJSON)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "player sources YAML to validate instead of the configured one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func printSources(cmd *cobra.Command, catalog *player.Catalog, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.Sources())
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSANDBOX\tEVENTS\tFRENCH")
	for _, s := range catalog.Sources() {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\n", s.ID, s.Name, s.NeedsSandbox, s.SupportsEvents, s.French)
	}
	return tw.Flush()
}

