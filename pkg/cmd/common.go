package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"DockerStats/pkg/collecting"
	"DockerStats/pkg/exporting"
	"DockerStats/pkg/utils"
)

// setup layers config sources and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.cfg.Load(a.configFile, cmd.Flags()); err != nil {
		return err
	}
	table := collecting.TableFromConfig(a.cfg.Metrics)
	if err := table.Validate(); err != nil {
		return err
	}

	logger, err := utils.NewLogger(a.cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("cmd", cmd.Name()))
	return nil
}

// openSink opens the configured output. Text without a file goes to a.out.
func (a *app) openSink() (exporting.Sink, error) {
	out := a.cfg.Output
	if out.Format == "text" && out.File == "" {
		return exporting.NewTextSink(a.out), nil
	}
	sink, err := exporting.NewSink(out, utils.GetHostInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s output: %w", out.Format, err)
	}
	return sink, nil
}

// newCollector wires a collector that publishes under the configured path.
func (a *app) newCollector(sink exporting.Sink) *collecting.Collector {
	extractor := collecting.NewExtractor(
		collecting.TableFromConfig(a.cfg.Metrics),
		a.cfg.Naming.EnvVar,
		a.cfg.Naming.Unknown,
		a.logger,
	)
	return collecting.NewCollector(
		a.newFactory(a.cfg.Docker),
		extractor,
		exporting.Namespace(a.cfg.Path, sink),
		collecting.Options{
			Workers:         a.cfg.Collection.Workers,
			IsolateFailures: a.cfg.Collection.IsolateFailures,
		},
		a.logger,
	)
}

func cycleResult(r collecting.Report) string {
	switch {
	case r.Err != nil:
		return exporting.ResultFailure
	case r.Partial != nil:
		return exporting.ResultPartial
	default:
		return exporting.ResultSuccess
	}
}

func (a *app) closeSink(sink exporting.Sink) {
	if err := sink.Close(); err != nil {
		a.logger.Warn("closing output", zap.Error(err))
	}
}

func (a *app) syncLogger() {
	_ = a.logger.Sync()
}
