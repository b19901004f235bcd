package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"DockerStats/pkg/collecting"
	"DockerStats/pkg/exporting"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the latest cycle on a Prometheus endpoint",
		Long: `Run collection cycles on an interval and serve the most recent successful
cycle over HTTP.

Endpoints:
  GET /metrics  Latest cycle as Prometheus gauges, plus collector telemetry
  GET /health   200 when the last cycle succeeded, 503 otherwise
  GET /info     Collector settings and last cycle summary as JSON

Metric names have dots replaced by underscores. An explicitly configured
output (--format other than text, or --output) also receives every cycle.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}

	a.cfg.AddCollectionFlags(cmd)
	a.cfg.AddOutputFlags(cmd)
	a.cfg.AddScheduleFlags(cmd)
	a.cfg.AddServeFlags(cmd)
	return cmd
}

// server holds the HTTP state shared with the collection loop.
type server struct {
	app       *app
	registry  *prometheus.Registry
	latest    *exporting.PrometheusSink
	telemetry *exporting.Telemetry

	mu   sync.RWMutex
	last *collecting.Report
}

func (a *app) newServer() *server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	latest := exporting.NewPrometheusSink()
	reg.MustRegister(latest)

	return &server{
		app:       a,
		registry:  reg,
		latest:    latest,
		telemetry: exporting.NewTelemetry(reg),
	}
}

// observe records a finished cycle for telemetry and health.
func (s *server) observe(r collecting.Report) {
	s.telemetry.Observe(cycleResult(r), r.Published, r.Containers, r.Failed, r.Duration)
	s.mu.Lock()
	s.last = &r
	s.mu.Unlock()
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(s.app.logger),
	}))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/info", s.handleInfo)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	switch {
	case last == nil:
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "STARTING")
	case !last.OK():
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "FAILING: %v\n", last.Err)
	default:
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	}
}

func (s *server) handleInfo(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.cfg
	info := map[string]interface{}{
		"path":             cfg.Path,
		"interval":         cfg.Interval.String(),
		"workers":          cfg.Collection.Workers,
		"isolate_failures": cfg.Collection.IsolateFailures,
		"name_env":         cfg.Naming.EnvVar,
		"metric_paths":     len(collecting.TableFromConfig(cfg.Metrics)),
		"output":           cfg.Output.Format,
	}

	s.mu.RLock()
	if s.last != nil {
		last := map[string]interface{}{
			"id":          s.last.ID,
			"started":     s.last.Started.UnixMilli(),
			"duration_ms": s.last.Duration.Milliseconds(),
			"containers":  s.last.Containers,
			"failed":      s.last.Failed,
			"published":   s.last.Published,
			"result":      cycleResult(*s.last),
		}
		if s.last.Err != nil {
			last["error"] = s.last.Err.Error()
		}
		info["last_cycle"] = last
	}
	s.mu.RUnlock()
	if updated := s.latest.Updated(); !updated.IsZero() {
		info["exposed_at"] = updated.UnixMilli()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

// sink is the Prometheus view, teed with an explicitly configured output.
func (s *server) sink() (exporting.Sink, error) {
	cfg := s.app.cfg.Output
	if cfg.Format == "text" && cfg.File == "" {
		return s.latest, nil
	}
	extra, err := s.app.openSink()
	if err != nil {
		return nil, err
	}
	return exporting.Tee(s.latest, extra), nil
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	defer a.syncLogger()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	srv := a.newServer()
	sink, err := srv.sink()
	if err != nil {
		return err
	}
	defer a.closeSink(sink)

	c := a.newCollector(sink)
	c.OnCycle(srv.observe)

	addr := fmt.Sprintf(":%d", a.cfg.Serve.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.Strings("endpoints", []string{"/metrics", "/health", "/info"}))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.schedule(loopCtx, c)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
	}
	cancelLoop()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Warn("HTTP server shutdown", zap.Error(shutdownErr))
	}
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
