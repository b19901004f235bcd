package exporting

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// TextSink writes one "<name> <value> <type>" line per metric.
type TextSink struct {
	w      *bufio.Writer
	closer io.Closer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: bufio.NewWriter(w)}
}

// OpenTextSink appends to path, or writes to stdout when path is empty.
func OpenTextSink(path string) (*TextSink, error) {
	if path == "" {
		return NewTextSink(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open text output: %w", err)
	}
	s := NewTextSink(f)
	s.closer = f
	return s, nil
}

func (s *TextSink) Publish(name string, value float64, typ MetricType) error {
	_, err := fmt.Fprintf(s.w, "%s %s %s\n", name, strconv.FormatFloat(value, 'f', -1, 64), typ)
	return err
}

func (s *TextSink) Flush() error {
	return s.w.Flush()
}

func (s *TextSink) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
