package exporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"DockerStats/pkg/utils"
)

// Columns every recorded cycle carries besides its metrics.
const (
	ColumnTimestamp = "timestamp"
	ColumnCycle     = "cycle"
	ColumnHostname  = "hostname"
	ColumnKernel    = "kernel"
)

// Exporter is a Sink that records each cycle as one row of a file format.
type Exporter struct {
	path   string
	format string
	writer Writer
	host   utils.HostInfo

	mu    sync.Mutex
	row   Record
	cycle string
	ts    time.Time
}

// NewExporter creates the output directory and opens a writer for format.
func NewExporter(path, format string, host utils.HostInfo) (*Exporter, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return nil, fmt.Errorf("failed to initialize writer: %w", err)
	}

	return &Exporter{
		path:   path,
		format: f.Name(),
		writer: writer,
		host:   host,
		row:    make(Record),
	}, nil
}

func (e *Exporter) Path() string   { return e.path }
func (e *Exporter) Format() string { return e.format }

func (e *Exporter) BeginCycle(id string, ts time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cycle = id
	e.ts = ts
}

func (e *Exporter) Publish(name string, value float64, _ MetricType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.row[name] = value
	return nil
}

// Flush writes the pending cycle as one row.
func (e *Exporter) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.row) == 0 {
		return nil
	}
	ts := e.ts
	if ts.IsZero() {
		ts = time.Now()
	}
	e.row[ColumnTimestamp] = ts.UnixMilli()
	e.row[ColumnCycle] = e.cycle
	e.row[ColumnHostname] = e.host.Hostname
	e.row[ColumnKernel] = e.host.Kernel

	row := e.row
	e.row = make(Record, len(row))
	e.cycle, e.ts = "", time.Time{}

	if err := e.writer.Write(row); err != nil {
		return err
	}
	return e.writer.Flush()
}

func (e *Exporter) Close() error {
	if err := e.Flush(); err != nil {
		_ = e.writer.Close()
		return err
	}
	return e.writer.Close()
}
