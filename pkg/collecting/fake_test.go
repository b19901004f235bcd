package collecting

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"DockerStats/pkg/exporting"
	"DockerStats/pkg/probing"
)

// fakeClient is an in-memory runtime.
type fakeClient struct {
	running  []probing.Container
	stopped  []probing.Container
	images   []string
	dangling []string
	env      map[string][]string
	stats    map[string]string

	failOn   map[string]error // keyed by "list", "images", "inspect:<id>", "stats:<id>"
	panicOn  string
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32

	mu           sync.Mutex
	opened       int
	closedBodies int
	closed       bool
}

func (f *fakeClient) fail(key string) error {
	if key == f.panicOn {
		panic("boom: " + key)
	}
	return f.failOn[key]
}

func (f *fakeClient) ListContainers(_ context.Context, all bool) ([]probing.Container, error) {
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	if all {
		return append(append([]probing.Container{}, f.running...), f.stopped...), nil
	}
	return f.running, nil
}

func (f *fakeClient) ListImageIDs(_ context.Context, danglingOnly bool) ([]string, error) {
	if err := f.fail("images"); err != nil {
		return nil, err
	}
	if danglingOnly {
		return f.dangling, nil
	}
	return f.images, nil
}

func (f *fakeClient) ContainerEnv(_ context.Context, id string) ([]string, error) {
	if err := f.fail("inspect:" + id); err != nil {
		return nil, err
	}
	return f.env[id], nil
}

func (f *fakeClient) ContainerStats(ctx context.Context, id string) (io.ReadCloser, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "stats")
		}
	}

	if err := f.fail("stats:" + id); err != nil {
		return nil, err
	}
	doc, ok := f.stats[id]
	if !ok {
		doc = "{}"
	}
	f.mu.Lock()
	f.opened++
	f.mu.Unlock()
	return &trackedBody{Reader: strings.NewReader(doc), client: f}, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.fail("ping") }

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) factory() probing.Factory {
	return func() (probing.Client, error) { return f, nil }
}

type trackedBody struct {
	io.Reader
	client *fakeClient
}

func (b *trackedBody) Close() error {
	b.client.mu.Lock()
	defer b.client.mu.Unlock()
	b.client.closedBodies++
	return nil
}

type published struct {
	Name  string
	Value float64
	Type  exporting.MetricType
}

// recordingSink remembers every publish in order.
type recordingSink struct {
	mu        sync.Mutex
	published []published
	flushes   int
	cycles    []string
	failOn    string
}

func (s *recordingSink) Publish(name string, value float64, typ exporting.MetricType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.failOn {
		return errors.New("sink rejected " + name)
	}
	s.published = append(s.published, published{name, value, typ})
	return nil
}

func (s *recordingSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) BeginCycle(id string, _ time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles = append(s.cycles, id)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.published))
	for i, p := range s.published {
		names[i] = p.Name
	}
	return names
}

func (s *recordingSink) value(name string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.published {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}
