// Package csvlog appends enriched records to a CSV file and fans them out to
// a bounded queue for the live view.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"kafji.net/tetikus/logging"
	"kafji.net/tetikus/tetikus/capture"
)

var slog = logging.New("tetikus/csvlog")

const (
	// wall-clock interval between flush+sync passes
	flushInterval = 500 * time.Millisecond

	queueCapacity = 2000
)

// Writer owns one log file. Write never blocks on the live view and never
// fails once the file is open: mid-session durability is best effort, the
// capture path keeps running.
type Writer struct {
	mu        sync.Mutex
	file      *os.File
	csv       *csv.Writer
	lastFlush time.Time
	closed    bool
	now       func() time.Time

	records chan capture.Record
	dropped uint64
}

// Open creates or appends to the log at path. The header row is written only
// when the file is new or empty, so an existing path can be resumed across
// process restarts without a duplicate header. A nil now uses time.Now.
func Open(path string, now func() time.Time) (*Writer, error) {
	return open(path, now, queueCapacity)
}

func open(path string, now func() time.Time, capacity int) (*Writer, error) {
	if now == nil {
		now = time.Now
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	w := &Writer{
		file:      f,
		csv:       csv.NewWriter(f),
		lastFlush: now(),
		now:       now,
		records:   make(chan capture.Record, capacity),
	}

	if info.Size() == 0 {
		if err := w.csv.Write(capture.Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	return w, nil
}

// Records is the hand-off to the live view. The channel closes on Close;
// records the consumer was too slow for are dropped, never the writes.
func (w *Writer) Records() <-chan capture.Record {
	return w.records
}

// Dropped reports how many records the live view missed to backpressure.
func (w *Writer) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Write appends one CSV row and offers the record to the live view. Both
// happen under one lock, so file order matches queue order. When more than
// flushInterval has passed since the last flush, the buffer is flushed and
// synced before returning; failures there are swallowed.
func (w *Writer) Write(rec capture.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if err := w.csv.Write(rec.Row()); err != nil {
		slog.Debug("failed to buffer row", "error", err)
	}

	select {
	case w.records <- rec:
	default:
		w.dropped++
	}

	if now := w.now(); now.Sub(w.lastFlush) > flushInterval {
		w.flush()
		w.lastFlush = now
	}
}

// Close flushes, syncs, and releases the file, then closes the record
// channel. Safe to call more than once.
func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true

	w.flush()
	if err := w.file.Close(); err != nil {
		slog.Debug("failed to close log file", "error", err)
	}
	close(w.records)
}

func (w *Writer) flush() {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		slog.Debug("failed to flush rows", "error", err)
	}
	if err := w.file.Sync(); err != nil {
		slog.Debug("failed to sync log file", "error", err)
	}
}
