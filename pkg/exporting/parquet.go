package exporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"
)

// ParquetBatchSize is the number of rows buffered before they are handed to
// the parquet writer.
const ParquetBatchSize = 1000

func init() {
	Register(&ParquetFormat{})
}

type ParquetFormat struct{}

func (f *ParquetFormat) Name() string         { return "parquet" }
func (f *ParquetFormat) Extensions() []string { return []string{".parquet"} }
func (f *ParquetFormat) Reader() Reader       { return &ParquetReader{} }
func (f *ParquetFormat) Writer() Writer       { return &ParquetWriter{} }

// ParquetReader reads every row group of a file into records.
type ParquetReader struct {
	file  *os.File
	pfile *parquet.File
}

func (r *ParquetReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to open parquet file: %w", err)
	}
	r.file = file
	r.pfile = pf
	return nil
}

func (r *ParquetReader) Read() ([]Record, error) {
	if r.pfile == nil {
		return nil, errors.New("reader not initialized")
	}

	fields := r.pfile.Schema().Fields()
	records := make([]Record, 0, r.pfile.NumRows())
	buf := make([]parquet.Row, 128)

	for _, rg := range r.pfile.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				record := make(Record, len(fields))
				for _, val := range row {
					col := val.Column()
					if col < 0 || col >= len(fields) || val.IsNull() {
						continue
					}
					record[fields[col].Name()] = fromParquetValue(val)
				}
				records = append(records, record)
			}
			if err != nil {
				_ = rows.Close()
				if !errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("failed to read rows: %w", err)
				}
				break
			}
			if n == 0 {
				_ = rows.Close()
				break
			}
		}
	}
	return records, nil
}

func fromParquetValue(v parquet.Value) interface{} {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		return string(v.ByteArray())
	}
}

func (r *ParquetReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParquetWriter writes snappy-compressed rows. The schema is built from the
// first record: integers become INT64, floats DOUBLE, everything else a
// string, all optional.
type ParquetWriter struct {
	path    string
	file    *os.File
	writer  *parquet.Writer
	columns []string
	buffer  []parquet.Row
	mu      sync.Mutex
}

func (w *ParquetWriter) Init(path string) error {
	w.path = path
	w.buffer = make([]parquet.Row, 0, ParquetBatchSize)
	return nil
}

func (w *ParquetWriter) initSchema(record Record) error {
	w.columns = sortedKeys(record)
	group := make(parquet.Group, len(w.columns))
	for _, name := range w.columns {
		group[name] = parquetNode(record[name])
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.file = file
	w.writer = parquet.NewWriter(file,
		parquet.NewSchema("cycle", group),
		parquet.Compression(&parquet.Snappy),
	)
	return nil
}

func parquetNode(val interface{}) parquet.Node {
	switch val.(type) {
	case int, int64:
		return parquet.Optional(parquet.Int(64))
	case float64:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case bool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.String())
	}
}

// toParquetValue converts val for column i. Optional leaves have a max
// definition level of 1.
func toParquetValue(val interface{}, i int) parquet.Value {
	var v parquet.Value
	switch x := val.(type) {
	case nil:
		return parquet.NullValue().Level(0, 0, i)
	case int:
		v = parquet.Int64Value(int64(x))
	case int64:
		v = parquet.Int64Value(x)
	case float64:
		v = parquet.DoubleValue(x)
	case bool:
		v = parquet.BooleanValue(x)
	case string:
		v = parquet.ByteArrayValue([]byte(x))
	default:
		v = parquet.ByteArrayValue([]byte(fmt.Sprint(x)))
	}
	return v.Level(0, 1, i)
}

func (w *ParquetWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		if err := w.initSchema(record); err != nil {
			return err
		}
	}

	row := make(parquet.Row, len(w.columns))
	for i, name := range w.columns {
		row[i] = toParquetValue(record[name], i)
	}
	w.buffer = append(w.buffer, row)

	if len(w.buffer) >= ParquetBatchSize {
		return w.flushBuffer()
	}
	return nil
}

func (w *ParquetWriter) flushBuffer() error {
	if len(w.buffer) == 0 || w.writer == nil {
		return nil
	}
	if _, err := w.writer.WriteRows(w.buffer); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	w.buffer = w.buffer[:0]
	return nil
}

func (w *ParquetWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.flushBuffer(); err != nil {
		return err
	}
	if w.writer != nil {
		return w.writer.Flush()
	}
	return nil
}

func (w *ParquetWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.writer != nil {
		if err := w.writer.Close(); err != nil {
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *ParquetWriter) Path() string { return w.path }
