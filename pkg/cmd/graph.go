package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"DockerStats/pkg/graphing"
)

func (a *app) graphCmd() *cobra.Command {
	var outputDir, filter string

	cmd := &cobra.Command{
		Aliases: []string{"g"},
		Use:     "graph <input-file>",
		Short:   "Render charts from a recorded history file",
		Long: `Render an HTML page with one line chart per metric from a file written by
'run --format jsonl|csv|tsv|parquet'.

Example:
  dockerstats graph stats.jsonl
  dockerstats graph stats.parquet -o ./graphs --filter memory`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if _, err := os.Stat(inputPath); err != nil {
				return fmt.Errorf("input file not found: %s", inputPath)
			}
			dir := outputDir
			if dir == "" {
				dir = filepath.Dir(inputPath)
			}

			gen, err := graphing.NewGenerator(inputPath, dir)
			if err != nil {
				return fmt.Errorf("failed to create generator: %w", err)
			}
			gen.Filter = filter
			out, err := gen.Generate()
			if err != nil {
				return fmt.Errorf("failed to generate graphs: %w", err)
			}
			fmt.Fprintf(a.out, "Generated graphs in: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: next to the input)")
	cmd.Flags().StringVar(&filter, "filter", "", "Only chart metrics whose name contains this")
	return cmd
}
