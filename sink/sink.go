// Package sink provides terminal consumers for streams: a console writer, a
// text-file writer, and a delimited-record writer. Each buffers output and
// flushes it on a periodic interval; an interval of 0 flushes after every Row.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	streaming "github.com/apsaltis/ML-Pipelines"
)

// writer is the shared flush machinery behind the package's SinkWriters
type writer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closer io.Closer // nil when the destination is not owned by the writer
	format func(row *streaming.Row) (string, error)
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	err    error
}

func newWriter(w io.Writer, closer io.Closer, flushInterval time.Duration, format func(*streaming.Row) (string, error)) *writer {
	sw := &writer{
		buf:    bufio.NewWriter(w),
		closer: closer,
		format: format,
	}
	if flushInterval > 0 {
		sw.ticker = time.NewTicker(flushInterval)
		sw.done = make(chan struct{})
		sw.wg.Add(1)
		go func() {
			defer sw.wg.Done()
			for {
				select {
				case <-sw.ticker.C:
					sw.Flush()
				case <-sw.done:
					return
				}
			}
		}()
	}
	return sw
}

// Write formats and buffers a single Row
func (w *writer) Write(row *streaming.Row) error {
	line, err := w.format(row)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, err = w.buf.WriteString(line); err != nil {
		w.err = err
		return err
	}
	if err = w.buf.WriteByte('\n'); err != nil {
		w.err = err
		return err
	}
	if w.ticker == nil {
		// no periodic flusher: flush as available
		if err = w.buf.Flush(); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// Flush forces buffered Rows out
func (w *writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if err := w.buf.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close stops the periodic flusher, flushes remaining Rows and releases the destination
func (w *writer) Close() error {
	if w.ticker != nil {
		w.ticker.Stop()
		close(w.done)
		w.wg.Wait()
	}
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Console produces a SinkWriter printing each Row's textual representation to w
func Console(w io.Writer, flushInterval time.Duration) streaming.SinkWriter {
	return newWriter(w, nil, flushInterval, func(row *streaming.Row) (string, error) {
		return row.String(), nil
	})
}

// TextFile produces a SinkWriter appending each Row's textual representation
// to the file at path, creating it if necessary
func TextFile(path string, flushInterval time.Duration) (streaming.SinkWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return newWriter(f, f, flushInterval, func(row *streaming.Row) (string, error) {
		return row.String(), nil
	}), nil
}

// Delimited produces a SinkWriter appending each Row's column values to the
// file at path, joined by delim in Schema order
func Delimited(path string, delim string, flushInterval time.Duration) (streaming.SinkWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return newWriter(f, f, flushInterval, delimitedFormat(delim)), nil
}

// DelimitedTo produces a SinkWriter writing delimited Rows to an arbitrary
// destination, for consumers managing their own files
func DelimitedTo(w io.Writer, delim string, flushInterval time.Duration) streaming.SinkWriter {
	return newWriter(w, nil, flushInterval, delimitedFormat(delim))
}

func delimitedFormat(delim string) func(*streaming.Row) (string, error) {
	return func(row *streaming.Row) (string, error) {
		var sb strings.Builder
		err := row.Schema().ForEachColumn(func(name string, idx int, colType streaming.ColumnType) error {
			if idx > 0 {
				sb.WriteString(delim)
			}
			v, err := row.Get(streaming.Ordinal(idx))
			if err != nil {
				return err
			}
			if v != nil {
				fmt.Fprintf(&sb, "%v", v)
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return sb.String(), nil
	}
}
