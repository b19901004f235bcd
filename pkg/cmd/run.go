package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"DockerStats/pkg/collecting"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run collection cycles on an interval until interrupted",
		Long: `Run a collection cycle immediately and then once per interval until
SIGINT or SIGTERM. A failed cycle is logged and the next one runs on schedule.

Example:
  dockerstats run --interval 30s
  dockerstats run --format csv -o stats.csv --workers 4`,
		Args: cobra.NoArgs,
		RunE: a.runLoop,
	}

	a.cfg.AddCollectionFlags(cmd)
	a.cfg.AddOutputFlags(cmd)
	a.cfg.AddScheduleFlags(cmd)
	return cmd
}

func (a *app) runLoop(cmd *cobra.Command, _ []string) error {
	defer a.syncLogger()

	if a.cfg.Interval < time.Second {
		a.logger.Warn("interval below one second is rounded up", zap.Duration("interval", a.cfg.Interval))
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	sink, err := a.openSink()
	if err != nil {
		return err
	}
	defer a.closeSink(sink)

	c := a.newCollector(sink)
	c.OnCycle(func(r collecting.Report) {
		if r.OK() {
			a.logger.Info("cycle finished",
				zap.String("cycle", r.ID),
				zap.Int("published", r.Published),
				zap.Duration("took", r.Duration))
		}
	})

	a.schedule(ctx, c)
	return nil
}
