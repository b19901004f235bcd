package graphing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DockerStats/pkg/exporting"
)

func history() []exporting.Record {
	return []exporting.Record{
		{"timestamp": int64(1700000010000), "cycle": "b", "hostname": "node-1", "kernel": "6.1.0",
			"docker_stats.containers_running_count": 2.0, "docker_stats.checkout.svc-1.memory.rrs": 2048.0},
		{"timestamp": int64(1700000000000), "cycle": "a", "hostname": "node-1", "kernel": "6.1.0",
			"docker_stats.containers_running_count": 1.0, "docker_stats.checkout.svc-1.memory.rrs": 1024.0},
		{"timestamp": int64(1700000020000), "cycle": "c", "hostname": "node-1", "kernel": "6.1.0",
			"docker_stats.containers_running_count": 1.0},
	}
}

func TestBuildSeries(t *testing.T) {
	series := buildSeries(history(), "")
	require.Len(t, series, 2)

	assert.Equal(t, "docker_stats.checkout.svc-1.memory.rrs", series[0].Name)
	assert.Len(t, series[0].Values, 2)
	assert.Equal(t, "docker_stats.containers_running_count", series[1].Name)
	assert.Len(t, series[1].Values, 3)

	filtered := buildSeries(history(), "checkout")
	require.Len(t, filtered, 1)
	assert.Equal(t, "docker_stats.checkout.svc-1.memory.rrs", filtered[0].Name)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "stats.jsonl")
	require.NoError(t, exporting.SaveRecords(input, history()))

	gen, err := NewGenerator(input, filepath.Join(dir, "graphs"))
	require.NoError(t, err)
	out, err := gen.Generate()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "graphs", "stats.html"), out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "docker_stats.checkout.svc-1.memory.rrs")
	assert.Contains(t, html, "node-1")
	assert.Contains(t, html, "3 cycles")
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewGenerator("", dir)
	assert.Error(t, err)
	_, err = NewGenerator("x.jsonl", "")
	assert.Error(t, err)

	single := filepath.Join(dir, "single.csv")
	require.NoError(t, exporting.SaveRecords(single, history()[:1]))
	gen, err := NewGenerator(single, dir)
	require.NoError(t, err)
	_, err = gen.Generate()
	assert.Error(t, err)

	gen, err = NewGenerator(filepath.Join(dir, "missing.jsonl"), dir)
	require.NoError(t, err)
	_, err = gen.Generate()
	assert.Error(t, err)
}

func TestGenerateFilterWithoutMatches(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "stats.jsonl")
	require.NoError(t, exporting.SaveRecords(input, history()))

	gen, err := NewGenerator(input, dir)
	require.NoError(t, err)
	gen.Filter = "nothing-matches"
	_, err = gen.Generate()
	assert.Error(t, err)
}
