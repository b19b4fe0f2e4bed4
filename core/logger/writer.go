package logger

import (
	"errors"
	"io"
	"log/slog"
	"sync"
)

// sink receives lines at or above min.
type sink struct {
	w   io.Writer
	min slog.Level
}

type queued struct {
	line  []byte
	level slog.Level
	// flushed is non-nil for flush markers.
	flushed chan struct{}
}

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter fans lines out to sinks on a single goroutine so slow files
// never block handlers, while preserving line order.
type asyncWriter struct {
	sinks []sink
	queue chan queued
	done  chan struct{}

	// stateMu guards closed; senders hold it shared so Close cannot close
	// the queue under them.
	stateMu sync.RWMutex
	closed  bool

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(sinks []sink, depth int) *asyncWriter {
	if depth <= 0 {
		depth = 256
	}
	w := &asyncWriter{
		sinks: sinks,
		queue: make(chan queued, depth),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for q := range w.queue {
		if q.flushed != nil {
			close(q.flushed)
			continue
		}
		for _, s := range w.sinks {
			if q.level < s.min {
				continue
			}
			if _, err := s.w.Write(q.line); err != nil {
				w.setErr(err)
			}
		}
	}
}

// Write copies p and queues it; it blocks only while the queue is full.
func (w *asyncWriter) Write(level slog.Level, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.firstErr(); err != nil {
		return err
	}
	w.stateMu.RLock()
	defer w.stateMu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- queued{line: append([]byte(nil), p...), level: level}
	return nil
}

// Flush returns once every line queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	w.stateMu.RLock()
	if w.closed {
		w.stateMu.RUnlock()
		return w.firstErr()
	}
	marker := make(chan struct{})
	w.queue <- queued{flushed: marker}
	w.stateMu.RUnlock()
	<-marker
	return w.firstErr()
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.stateMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.stateMu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) setErr(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
