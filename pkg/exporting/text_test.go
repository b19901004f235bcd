package exporting

import (
	"bufio"
	"bytes"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf)

	require.NoError(t, s.Publish("docker_stats.checkout.svc-1.memory.rrs", 1024, Gauge))
	require.NoError(t, s.Publish("docker_stats.images_count", 0, Gauge))
	assert.Empty(t, buf.String(), "nothing is written before flush")

	require.NoError(t, s.Flush())
	assert.Equal(t,
		"docker_stats.checkout.svc-1.memory.rrs 1024 gauge\n"+
			"docker_stats.images_count 0 gauge\n",
		buf.String())
}

func TestOpenTextSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	for i := 0; i < 2; i++ {
		s, err := OpenTextSink(path)
		require.NoError(t, err)
		require.NoError(t, s.Publish("m", float64(i), Gauge))
		require.NoError(t, s.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "m 0 gauge\nm 1 gauge\n", string(data))
}

func TestGraphiteSink(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	lines := make(chan string, 4)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	s := NewGraphiteSink(ln.Addr().String())
	defer s.Close()

	ts := time.Unix(1700000000, 0)
	BeginCycle(s, "c", ts)
	require.NoError(t, s.Publish("docker_stats.containers_running_count", 2, Gauge))
	require.NoError(t, s.Publish("docker_stats.job.web.cpu.total", 33196532405, Gauge))
	require.NoError(t, s.Flush())

	for _, want := range []string{
		"docker_stats.containers_running_count 2 1700000000",
		"docker_stats.job.web.cpu.total 33196532405 1700000000",
	} {
		select {
		case got := <-lines:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestGraphiteSinkUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := NewGraphiteSink(addr)
	require.NoError(t, s.Publish("m", 1, Gauge))
	assert.Error(t, s.Flush())

	// The failed cycle is dropped, not resent.
	assert.NoError(t, s.Flush())
}
