package view

import (
	"io"
	"sync"
)

// asyncWriter decouples rendering from the terminal. A stalled console
// (QuickEdit selection, slow SSH) must not stall the drain loop, so writes
// are queued to a goroutine and dropped when the queue is full.
type asyncWriter struct {
	out  io.Writer
	once sync.Once
	wc   chan []byte
}

func newAsyncWriter(out io.Writer) *asyncWriter {
	return &asyncWriter{out: out}
}

func (w *asyncWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.once.Do(func() {
		w.wc = make(chan []byte, 4096)
		go func() {
			for b := range w.wc {
				for m := 0; m < len(b); {
					n, err := w.out.Write(b[m:])
					if n == 0 || err != nil {
						return
					}
					m += n
				}
			}
		}()
	})

	b := make([]byte, len(p))
	copy(b, p)
	select {
	case w.wc <- b:
	default:
	}

	return len(p), nil
}
