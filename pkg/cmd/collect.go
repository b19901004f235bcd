package cmd

import (
	"github.com/spf13/cobra"
)

func (a *app) collectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collect",
		Aliases: []string{"once"},
		Short:   "Run one collection cycle and publish it",
		Long: `Run a single collection cycle and publish the batch to the configured output.

A failing runtime call abandons the cycle: nothing is published and the
failure is logged once. Use --isolate-failures to skip failing containers
instead.

Example:
  dockerstats collect
  dockerstats collect --format jsonl -o stats.jsonl
  dockerstats collect --format graphite --address graphite:2003`,
		Args: cobra.NoArgs,
		RunE: a.runCollect,
	}

	a.cfg.AddCollectionFlags(cmd)
	a.cfg.AddOutputFlags(cmd)
	return cmd
}

func (a *app) runCollect(cmd *cobra.Command, _ []string) error {
	defer a.syncLogger()

	sink, err := a.openSink()
	if err != nil {
		return err
	}
	defer a.closeSink(sink)

	report := a.newCollector(sink).RunCycle(cmd.Context())
	if !report.OK() {
		return errCycleFailed
	}
	return nil
}
