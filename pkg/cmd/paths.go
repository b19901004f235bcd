package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"DockerStats/pkg/collecting"
)

func (a *app) pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the stats paths that are extracted",
		Long: `Print the active path table: each dotted path into the per-container stats
document and the metric suffix it is published under. The table comes from
the 'metrics' key of the config file, or the built-in default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tSUFFIX")
			for _, m := range collecting.TableFromConfig(a.cfg.Metrics) {
				fmt.Fprintf(tw, "%s\t%s\n", m.Path, m.Suffix)
			}
			return tw.Flush()
		},
	}
}
