package exporting

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

const graphiteDialTimeout = 5 * time.Second

// GraphiteSink sends a cycle over the Graphite plaintext protocol. Lines are
// buffered until Flush; the connection is reopened after a write error.
type GraphiteSink struct {
	address string
	dial    func(network, address string, timeout time.Duration) (net.Conn, error)

	mu   sync.Mutex
	conn net.Conn
	buf  bytes.Buffer
	ts   time.Time
}

func NewGraphiteSink(address string) *GraphiteSink {
	return &GraphiteSink{address: address, dial: net.DialTimeout}
}

func (g *GraphiteSink) BeginCycle(_ string, ts time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ts = ts
}

func (g *GraphiteSink) Publish(name string, value float64, _ MetricType) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.ts
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&g.buf, "%s %s %d\n", name, strconv.FormatFloat(value, 'f', -1, 64), ts.Unix())
	return nil
}

func (g *GraphiteSink) Flush() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer func() {
		g.buf.Reset()
		g.ts = time.Time{}
	}()

	if g.buf.Len() == 0 {
		return nil
	}
	if g.conn == nil {
		conn, err := g.dial("tcp", g.address, graphiteDialTimeout)
		if err != nil {
			return fmt.Errorf("failed to connect to graphite at %s: %w", g.address, err)
		}
		g.conn = conn
	}

	_ = g.conn.SetWriteDeadline(time.Now().Add(graphiteDialTimeout))
	if _, err := g.conn.Write(g.buf.Bytes()); err != nil {
		_ = g.conn.Close()
		g.conn = nil
		return fmt.Errorf("failed to send to graphite: %w", err)
	}
	return nil
}

func (g *GraphiteSink) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	return err
}
