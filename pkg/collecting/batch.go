package collecting

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"DockerStats/pkg/exporting"
)

// Gauge is the type of every published metric.
const Gauge = exporting.Gauge

// Result is one named metric value.
type Result struct {
	Name  string
	Value float64
	Type  exporting.MetricType
}

type entry struct {
	value float64
	typ   exporting.MetricType
}

// Batch holds every metric of one cycle, keyed by name. It is not safe for
// concurrent use.
type Batch struct {
	ID        string
	Timestamp time.Time
	entries   map[string]entry
}

// NewBatch returns an empty batch with a fresh cycle id.
func NewBatch() *Batch {
	return newBatch(uuid.NewString())
}

func newBatch(id string) *Batch {
	return &Batch{
		ID:        id,
		Timestamp: time.Now(),
		entries:   make(map[string]entry),
	}
}

// Add records a value. A later value for the same name replaces the earlier one.
func (b *Batch) Add(name string, value float64, typ exporting.MetricType) {
	b.entries[name] = entry{value: value, typ: typ}
}

// AddResults adds every result in order.
func (b *Batch) AddResults(results []Result) {
	for _, r := range results {
		b.Add(r.Name, r.Value, r.Type)
	}
}

// Get returns the entry recorded under name.
func (b *Batch) Get(name string) (Result, bool) {
	e, ok := b.entries[name]
	if !ok {
		return Result{}, false
	}
	return Result{Name: name, Value: e.value, Type: e.typ}, true
}

// Len is the number of distinct metric names.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Names returns every metric name in lexicographic order.
func (b *Batch) Names() []string {
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Results returns the batch in publish order.
func (b *Batch) Results() []Result {
	names := b.Names()
	results := make([]Result, len(names))
	for i, name := range names {
		e := b.entries[name]
		results[i] = Result{Name: name, Value: e.value, Type: e.typ}
	}
	return results
}

// Publish sends every entry to sink in name order and then flushes it.
// A failing publish does not stop the remaining ones.
func (b *Batch) Publish(sink exporting.Sink) error {
	exporting.BeginCycle(sink, b.ID, b.Timestamp)

	var result *multierror.Error
	for _, name := range b.Names() {
		e := b.entries[name]
		if err := sink.Publish(name, e.value, e.typ); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := sink.Flush(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
