package exporting

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink keeps the last flushed cycle and exposes it as gauges.
// It is an unchecked collector: the metric set changes with the fleet.
type PrometheusSink struct {
	mu      sync.RWMutex
	pending map[string]float64
	current map[string]float64
	updated time.Time
}

func NewPrometheusSink() *PrometheusSink {
	return &PrometheusSink{
		pending: make(map[string]float64),
		current: make(map[string]float64),
	}
}

func (p *PrometheusSink) Publish(name string, value float64, _ MetricType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[SanitizeName(name)] = value
	return nil
}

// Flush makes the pending cycle visible to scrapes.
func (p *PrometheusSink) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.pending
	p.pending = make(map[string]float64, len(p.current))
	p.updated = time.Now()
	return nil
}

func (p *PrometheusSink) Close() error { return nil }

// Updated reports when the exposed cycle was flushed.
func (p *PrometheusSink) Updated() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updated
}

func (p *PrometheusSink) Describe(chan<- *prometheus.Desc) {}

func (p *PrometheusSink) Collect(ch chan<- prometheus.Metric) {
	p.mu.RLock()
	names := make([]string, 0, len(p.current))
	for name := range p.current {
		names = append(names, name)
	}
	values := p.current
	p.mu.RUnlock()

	sort.Strings(names)
	for _, name := range names {
		desc := prometheus.NewDesc(name, "Docker stats gauge.", nil, nil)
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, values[name])
	}
}

// SanitizeName maps a dotted metric name onto the Prometheus name charset.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 1)
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
