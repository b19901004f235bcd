package exporting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	names   []string
	values  []float64
	flushes int
	closed  bool
	cycle   string
	err     error
}

func (m *memorySink) Publish(name string, value float64, _ MetricType) error {
	m.names = append(m.names, name)
	m.values = append(m.values, value)
	return m.err
}

func (m *memorySink) Flush() error { m.flushes++; return m.err }
func (m *memorySink) Close() error { m.closed = true; return m.err }

func (m *memorySink) BeginCycle(id string, _ time.Time) { m.cycle = id }

func TestNamespace(t *testing.T) {
	inner := &memorySink{}
	s := Namespace("docker_stats", inner)

	BeginCycle(s, "cycle-1", time.Now())
	require.NoError(t, s.Publish("containers_running_count", 3, Gauge))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	assert.Equal(t, []string{"docker_stats.containers_running_count"}, inner.names)
	assert.Equal(t, "cycle-1", inner.cycle)
	assert.Equal(t, 1, inner.flushes)
	assert.True(t, inner.closed)
}

func TestNamespaceEmptyPrefix(t *testing.T) {
	inner := &memorySink{}
	assert.Same(t, inner, Namespace("", inner))
}

func TestTee(t *testing.T) {
	a, b := &memorySink{}, &memorySink{err: errors.New("b is down")}
	s := Tee(a, b)

	BeginCycle(s, "cycle-2", time.Now())
	err := s.Publish("m", 1, Gauge)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b is down")

	assert.Equal(t, []string{"m"}, a.names)
	assert.Equal(t, []string{"m"}, b.names)
	assert.Equal(t, "cycle-2", a.cycle)
	assert.Equal(t, "cycle-2", b.cycle)

	assert.Error(t, s.Flush())
	assert.Equal(t, 1, a.flushes)
	assert.Error(t, s.Close())
	assert.True(t, a.closed)
}

func TestTeeSingle(t *testing.T) {
	a := &memorySink{}
	assert.Same(t, a, Tee(a))
}
