// Package collecting runs collection cycles against the container runtime.
package collecting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"DockerStats/pkg/exporting"
	"DockerStats/pkg/probing"
)

// Options tunes how a cycle extracts containers.
type Options struct {
	// Workers bounds concurrent extractions. 1 is strictly sequential.
	Workers int
	// IsolateFailures skips failing containers instead of abandoning the cycle.
	IsolateFailures bool
}

// Report summarises one cycle.
type Report struct {
	ID         string
	Started    time.Time
	Duration   time.Duration
	Containers int
	Failed     int
	Published  int
	// Err is set when the cycle was abandoned and nothing was published.
	Err error
	// Partial holds isolated container failures of a published cycle.
	Partial error
}

// OK reports whether the cycle was published.
func (r Report) OK() bool { return r.Err == nil }

// Collector runs cycles: enumerate, extract every running container, publish.
type Collector struct {
	factory   probing.Factory
	extractor *Extractor
	sink      exporting.Sink
	opts      Options
	logger    *zap.Logger

	mu        sync.Mutex
	observers []func(Report)
}

// NewCollector builds a collector that opens a client from factory on every
// cycle and publishes to sink.
func NewCollector(factory probing.Factory, extractor *Extractor, sink exporting.Sink, opts Options, logger *zap.Logger) *Collector {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Collector{
		factory:   factory,
		extractor: extractor,
		sink:      sink,
		opts:      opts,
		logger:    logger,
	}
}

// OnCycle registers fn to receive the report of every finished cycle.
func (c *Collector) OnCycle(fn func(Report)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Collect gathers one batch without publishing it. A nil batch means the
// cycle was abandoned and err says why. With IsolateFailures the batch may
// come back together with the aggregated container errors.
func (c *Collector) Collect(ctx context.Context) (*Batch, error) {
	return c.collect(ctx, uuid.NewString())
}

func (c *Collector) collect(ctx context.Context, id string) (*Batch, error) {
	client, err := c.factory()
	if err != nil {
		return nil, &CallError{Kind: ErrRuntimeUnavailable, Op: "connect", Err: err}
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			c.logger.Warn("closing runtime client", zap.Error(cerr))
		}
	}()

	inv, err := Enumerate(ctx, client, c.logger)
	if err != nil {
		return nil, err
	}

	batch := newBatch(id)
	inv.AddTo(batch)

	failed, err := c.extractAll(ctx, client, inv.Running, batch)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		batch.Add(MetricContainersFailed, float64(failed.Len()), Gauge)
		return batch, failed
	}
	if c.opts.IsolateFailures {
		batch.Add(MetricContainersFailed, 0, Gauge)
	}
	return batch, nil
}

// extractAll fills batch from every container. Without isolation the first
// error cancels the remaining work and is returned as err; with isolation
// errors are collected into failed.
func (c *Collector) extractAll(ctx context.Context, client probing.Client, containers []probing.Container, batch *Batch) (failed *multierror.Error, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	var mu sync.Mutex
	for _, ct := range containers {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results, err := c.safeExtract(gctx, client, ct)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if !c.opts.IsolateFailures {
					return err
				}
				failed = multierror.Append(failed, err)
				return nil
			}
			batch.AddResults(results)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "collection cancelled")
	}
	return failed, nil
}

// safeExtract converts a panic in one extraction into that container's error.
func (c *Collector) safeExtract(ctx context.Context, client probing.Client, ct probing.Container) (results []Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("extracting container %s panicked: %v", shortID(ct.ID), r)
		}
	}()
	return c.extractor.Extract(ctx, client, ct)
}

// RunCycle runs one complete cycle and publishes its batch. Every failure,
// including a panic, ends as a single error log entry; nothing escapes.
func (c *Collector) RunCycle(ctx context.Context) (report Report) {
	report.ID = uuid.NewString()
	report.Started = time.Now()
	log := c.logger.With(zap.String("cycle", report.ID))

	defer func() {
		if r := recover(); r != nil {
			report.Err = errors.Errorf("collection cycle panicked: %v", r)
			log.Error("collection cycle failed", zap.Error(report.Err))
		}
		report.Duration = time.Since(report.Started)
		c.notify(report)
	}()

	batch, err := c.collect(ctx, report.ID)
	if batch == nil {
		report.Err = err
		log.Error("collection cycle failed", zap.Error(err))
		return report
	}

	report.Containers = int(batchValue(batch, MetricContainersRunning))
	if err != nil {
		report.Partial = err
		if merr, ok := err.(*multierror.Error); ok {
			report.Failed = merr.Len()
		}
		log.Error("skipped failing containers",
			zap.Int("failed", report.Failed),
			zap.Error(err))
	}

	if err := batch.Publish(c.sink); err != nil {
		log.Error("publishing batch", zap.Error(err))
	}
	report.Published = batch.Len()

	log.Debug("collection cycle finished",
		zap.Int("containers", report.Containers),
		zap.Int("published", report.Published),
		zap.Duration("took", time.Since(report.Started)))
	return report
}

func (c *Collector) notify(r Report) {
	c.mu.Lock()
	observers := append([]func(Report){}, c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(r)
	}
}

func batchValue(b *Batch, name string) float64 {
	r, _ := b.Get(name)
	return r.Value
}

func (r Report) String() string {
	if r.Err != nil {
		return fmt.Sprintf("cycle %s failed after %s: %v", r.ID, r.Duration, r.Err)
	}
	return fmt.Sprintf("cycle %s: %d containers, %d metrics, %d failed in %s",
		r.ID, r.Containers, r.Published, r.Failed, r.Duration)
}
