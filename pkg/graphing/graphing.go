// Package graphing renders recorded cycles as HTML line charts.
package graphing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"DockerStats/pkg/exporting"
	"DockerStats/pkg/utils"
)

// Generator renders one HTML page from a recorded history file.
type Generator struct {
	inputPath string
	outputDir string
	// Filter keeps only metrics whose name contains it.
	Filter string
}

func NewGenerator(inputPath, outputDir string) (*Generator, error) {
	if inputPath == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	return &Generator{inputPath: inputPath, outputDir: outputDir}, nil
}

// Generate writes <outputDir>/<input-name>.html and returns its path.
func (g *Generator) Generate() (string, error) {
	records, err := exporting.LoadRecords(g.inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to load records: %w", err)
	}
	if len(records) < 2 {
		return "", fmt.Errorf("need at least 2 recorded cycles to graph, got %d", len(records))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return timestampOf(records[i]) < timestampOf(records[j])
	})

	series := buildSeries(records, g.Filter)
	page := components.NewPage()
	page.PageTitle = "Docker stats - " + filepath.Base(g.inputPath)

	added := 0
	for _, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		page.AddCharts(createLineChart(s))
		added++
	}
	if added == 0 {
		return "", fmt.Errorf("no metric has at least 2 samples")
	}

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render charts: %w", err)
	}
	html, err := injectSummary(buf.String(), summarize(records, added))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(g.inputPath), filepath.Ext(g.inputPath)) + ".html"
	out := filepath.Join(g.outputDir, name)
	if err := os.WriteFile(out, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

// Series is the history of one metric column.
type Series struct {
	Name       string
	Timestamps []int64
	Values     []float64
}

func isMetadata(col string) bool {
	switch col {
	case exporting.ColumnTimestamp, exporting.ColumnCycle, exporting.ColumnHostname, exporting.ColumnKernel:
		return true
	}
	return false
}

// buildSeries collects every numeric column into a series, ordered by name.
// Cycles in which a metric is missing leave a gap.
func buildSeries(records []exporting.Record, filter string) []*Series {
	byName := make(map[string]*Series)
	for _, r := range records {
		ts := timestampOf(r)
		for col, raw := range r {
			if isMetadata(col) || (filter != "" && !strings.Contains(col, filter)) {
				continue
			}
			v, ok := utils.ToFloat64Ok(raw)
			if !ok {
				continue
			}
			s, ok := byName[col]
			if !ok {
				s = &Series{Name: col}
				byName[col] = s
			}
			s.Timestamps = append(s.Timestamps, ts)
			s.Values = append(s.Values, v)
		}
	}

	result := make([]*Series, 0, len(byName))
	for _, s := range byName {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func timestampOf(r exporting.Record) int64 {
	ts, _ := utils.ToInt64Ok(r[exporting.ColumnTimestamp])
	return ts
}
