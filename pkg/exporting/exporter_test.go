package exporting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DockerStats/pkg/utils"
)

var testHost = utils.HostInfo{Hostname: "node-1", Kernel: "6.1.0"}

func recordCycles(t *testing.T, path, format string) {
	t.Helper()
	e, err := NewExporter(path, format, testHost)
	require.NoError(t, err)

	start := time.UnixMilli(1700000000000)
	for i := 0; i < 3; i++ {
		e.BeginCycle("cycle-"+string(rune('a'+i)), start.Add(time.Duration(i)*10*time.Second))
		require.NoError(t, e.Publish("docker_stats.containers_running_count", float64(i+1), Gauge))
		require.NoError(t, e.Publish("docker_stats.job.web.memory.rrs", 1024.5*float64(i), Gauge))
		require.NoError(t, e.Flush())
	}
	require.NoError(t, e.Close())
}

func TestExporterRoundTrip(t *testing.T) {
	for _, format := range []string{"jsonl", "csv", "tsv", "parquet"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "stats."+format)
			recordCycles(t, path, format)

			records, err := LoadRecords(path)
			require.NoError(t, err)
			require.Len(t, records, 3)

			last := records[2]
			assert.Equal(t, "cycle-c", last[ColumnCycle])
			assert.Equal(t, "node-1", last[ColumnHostname])
			assert.Equal(t, "6.1.0", last[ColumnKernel])

			ts, ok := utils.ToInt64Ok(last[ColumnTimestamp])
			require.True(t, ok, "timestamp %#v", last[ColumnTimestamp])
			assert.Equal(t, int64(1700000020000), ts)

			assert.Equal(t, float64(3), utils.ToFloat64(last["docker_stats.containers_running_count"]))
			assert.Equal(t, 2049.0, utils.ToFloat64(last["docker_stats.job.web.memory.rrs"]))
		})
	}
}

func TestExporterAppendsAcrossRestarts(t *testing.T) {
	for _, format := range []string{"jsonl", "csv", "tsv"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stats."+format)

			for i := 0; i < 2; i++ {
				e, err := NewExporter(path, format, testHost)
				require.NoError(t, err)
				e.BeginCycle("run-"+string(rune('a'+i)), time.UnixMilli(1700000000000+int64(i)*1000))
				require.NoError(t, e.Publish("docker_stats.images_count", float64(i+1), Gauge))
				require.NoError(t, e.Flush())
				require.NoError(t, e.Close())
			}

			records, err := LoadRecords(path)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, "run-a", records[0][ColumnCycle])
			assert.Equal(t, "run-b", records[1][ColumnCycle])
			assert.Equal(t, float64(2), utils.ToFloat64(records[1]["docker_stats.images_count"]))
		})
	}
}

func TestDelimitedWriterReusesExistingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.csv")
	require.NoError(t, os.WriteFile(path, []byte("b,a\n2,1\n"), 0644))

	w := (&CSVFormat{}).Writer()
	require.NoError(t, w.Init(path))
	require.NoError(t, w.Write(Record{"a": int64(3), "b": int64(4), "c": int64(5)}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b,a\n2,1\n4,3\n", string(data))
}

func TestExporterSkipsEmptyCycles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	e, err := NewExporter(path, "jsonl", testHost)
	require.NoError(t, err)

	require.NoError(t, e.Flush())
	require.NoError(t, e.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewExporterUnknownFormat(t *testing.T) {
	_, err := NewExporter(filepath.Join(t.TempDir(), "x.xml"), "xml", testHost)
	assert.Error(t, err)
}

func TestLoadRecordsUnknownExtension(t *testing.T) {
	_, err := LoadRecords("stats.xml")
	assert.Error(t, err)
}

func TestSaveRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.csv")
	require.NoError(t, SaveRecords(path, []Record{{"a": int64(1), "b": "x"}, {"a": int64(2)}}))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"a": int64(1), "b": "x"}, {"a": int64(2)}}, records)

	require.NoError(t, SaveRecords(path, []Record{{"a": int64(9)}}))
	records, err = LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"a": int64(9)}}, records)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "jsonl", "parquet", "tsv"}, Formats())
	f, ok := GetByPath("/tmp/history.NDJSON")
	require.True(t, ok)
	assert.Equal(t, "jsonl", f.Name())
}
