package collecting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"DockerStats/pkg/utils"
)

// Document is one decoded stats snapshot. Numbers are json.Number.
type Document = map[string]interface{}

// MetricPath maps a dotted path into a stats document to a metric suffix.
type MetricPath struct {
	Path   string
	Suffix string
}

// PathTable is the ordered list of paths extracted from every container.
type PathTable []MetricPath

// DefaultPathTable covers memory, cpu and eth0 network counters.
var DefaultPathTable = PathTable{
	{"memory_stats.stats.rss", "memory.rrs"},
	{"memory_stats.stats.total_rss", "memory.total_rrs"},
	{"memory_stats.stats.total_cache", "memory.total_cache"},
	{"memory_stats.stats.total_swap", "memory.total_swap"},
	{"memory_stats.stats.total_pgpgin", "memory.total_pgpgin"},
	{"memory_stats.stats.total_pgpgout", "memory.total_pgpgout"},

	{"cpu_stats.cpu_usage.total_usage", "cpu.total"},
	{"cpu_stats.cpu_usage.usage_in_kernelmode", "cpu.kernelmode"},
	{"cpu_stats.cpu_usage.usage_in_usermode", "cpu.usermode"},
	{"cpu_stats.system_cpu_usage", "cpu.system"},

	{"networks.eth0.rx_bytes", "network.rx_bytes"},
	{"networks.eth0.rx_packets", "network.rx_packets"},
	{"networks.eth0.rx_errors", "network.rx_errors"},
	{"networks.eth0.rx_dropped", "network.rx_dropped"},
	{"networks.eth0.tx_bytes", "network.tx_bytes"},
	{"networks.eth0.tx_packets", "network.tx_packets"},
	{"networks.eth0.tx_errors", "network.tx_errors"},
	{"networks.eth0.tx_drop", "network.tx_drop"},
}

// TableFromConfig converts configured paths, falling back to DefaultPathTable.
func TableFromConfig(paths []utils.MetricPath) PathTable {
	if len(paths) == 0 {
		return DefaultPathTable
	}
	table := make(PathTable, 0, len(paths))
	for _, p := range paths {
		table = append(table, MetricPath{Path: p.Path, Suffix: p.Suffix})
	}
	return table
}

// Validate rejects malformed and duplicate entries.
func (t PathTable) Validate() error {
	seen := make(map[string]bool, len(t))
	for i, m := range t {
		if m.Path == "" || m.Suffix == "" {
			return fmt.Errorf("path table entry %d: path and suffix must be non-empty", i)
		}
		for _, seg := range strings.Split(m.Path, ".") {
			if seg == "" {
				return fmt.Errorf("path table entry %d: empty segment in %q", i, m.Path)
			}
		}
		if seen[m.Path] {
			return fmt.Errorf("path table entry %d: duplicate path %q", i, m.Path)
		}
		seen[m.Path] = true
	}
	return nil
}

// Resolve walks a dotted path through nested objects. It reports false when
// a non-object is met before the last segment, or when a segment is missing
// or null. Zero values are present.
func Resolve(path string, doc Document) (interface{}, bool) {
	var node interface{} = doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := obj[key]
		if !ok || v == nil {
			return nil, false
		}
		node = v
	}
	return node, true
}

// DecodeDocument reads the first JSON document from a stats stream.
func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
