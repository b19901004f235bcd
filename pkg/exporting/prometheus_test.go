package exporting

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"docker_stats.checkout.svc-1.memory.rrs": "docker_stats_checkout_svc_1_memory_rrs",
		"containers_running_count":               "containers_running_count",
		"1job.web":                               "_1job_web",
		"job:web":                                "job:web",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestPrometheusSinkExposesLastFlushedCycle(t *testing.T) {
	sink := NewPrometheusSink()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(sink))

	require.NoError(t, sink.Publish("docker_stats.containers_running_count", 2, Gauge))
	assert.Equal(t, 0, testutil.CollectAndCount(sink), "pending values are not exposed")

	require.NoError(t, sink.Flush())
	require.NoError(t, sink.Publish("docker_stats.images_count", 9, Gauge))

	expected := `
# HELP docker_stats_containers_running_count Docker stats gauge.
# TYPE docker_stats_containers_running_count gauge
docker_stats_containers_running_count 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))

	// The next flush replaces the whole set.
	require.NoError(t, sink.Flush())
	assert.Equal(t, 1, testutil.CollectAndCount(sink))
	assert.WithinDuration(t, time.Now(), sink.Updated(), time.Second)
}

func TestTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	tel := NewTelemetry(reg)

	tel.Observe(ResultSuccess, 20, 3, 0, 150*time.Millisecond)
	tel.Observe(ResultFailure, 0, 0, 0, 2*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultFailure)))
	assert.Equal(t, float64(0), testutil.ToFloat64(tel.cycles.WithLabelValues(ResultPartial)))
	assert.Equal(t, float64(20), testutil.ToFloat64(tel.published), "failed cycles keep the last good value")
	assert.Equal(t, float64(3), testutil.ToFloat64(tel.containers))
	assert.Equal(t, 1, testutil.CollectAndCount(tel.duration))
}
