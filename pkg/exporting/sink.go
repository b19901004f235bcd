package exporting

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// MetricType tags a published value for the receiving pipeline.
type MetricType string

const Gauge MetricType = "gauge"

// Sink receives the metrics of a cycle. Flush marks the end of a cycle.
type Sink interface {
	Publish(name string, value float64, typ MetricType) error
	Flush() error
	Close() error
}

// CycleSink is implemented by sinks that record which cycle a value belongs to.
type CycleSink interface {
	BeginCycle(id string, ts time.Time)
}

// BeginCycle announces a cycle to s when it wants to know.
func BeginCycle(s Sink, id string, ts time.Time) {
	if cs, ok := s.(CycleSink); ok {
		cs.BeginCycle(id, ts)
	}
}

// Namespace prefixes every published name with prefix and a dot.
func Namespace(prefix string, s Sink) Sink {
	if prefix == "" {
		return s
	}
	return &namespaced{prefix: prefix + ".", Sink: s}
}

type namespaced struct {
	prefix string
	Sink
}

func (n *namespaced) Publish(name string, value float64, typ MetricType) error {
	return n.Sink.Publish(n.prefix+name, value, typ)
}

func (n *namespaced) BeginCycle(id string, ts time.Time) {
	BeginCycle(n.Sink, id, ts)
}

// Tee fans every call out to all sinks and aggregates their errors.
func Tee(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return tee(sinks)
}

type tee []Sink

func (t tee) Publish(name string, value float64, typ MetricType) error {
	var result *multierror.Error
	for _, s := range t {
		if err := s.Publish(name, value, typ); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (t tee) Flush() error {
	var result *multierror.Error
	for _, s := range t {
		if err := s.Flush(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (t tee) Close() error {
	var result *multierror.Error
	for _, s := range t {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (t tee) BeginCycle(id string, ts time.Time) {
	for _, s := range t {
		BeginCycle(s, id, ts)
	}
}
