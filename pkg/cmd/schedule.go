package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"DockerStats/pkg/collecting"
)

// cronLogger routes scheduler messages through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

// schedule runs a cycle every cfg.Interval until ctx is done. A cycle that
// overruns the interval causes the next tick to be skipped, so cycles never
// overlap. The first cycle runs immediately.
func (a *app) schedule(ctx context.Context, c *collecting.Collector) {
	logger := cronLogger{s: a.logger.Sugar()}
	sched := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	job := sched.Schedule(cron.Every(a.cfg.Interval), cron.FuncJob(func() {
		c.RunCycle(ctx)
	}))
	a.logger.Info("scheduling collection",
		zap.Duration("interval", a.cfg.Interval),
		zap.Int("entry", int(job)))

	c.RunCycle(ctx)
	sched.Start()
	<-ctx.Done()

	a.logger.Info("stopping scheduler")
	<-sched.Stop().Done()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
