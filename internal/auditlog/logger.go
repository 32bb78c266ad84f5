package auditlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// batchFlushThreshold triggers an immediate flush once this many entries
// have accumulated, without waiting for the timer.
const batchFlushThreshold = 100

// Logger buffers entries in a channel and writes them to the store in
// batches, either when the batch fills up or on a timer. Write never
// blocks request handling: when the buffer is full the entry is dropped
// and counted.
type Logger struct {
	store   LogStore
	config  Config
	buffer  chan *LogEntry
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewLogger creates an async buffered Logger and starts its flush loop.
func NewLogger(store LogStore, cfg Config) *Logger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	l := &Logger{
		store:  store,
		config: cfg,
		buffer: make(chan *LogEntry, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.flushLoop()

	return l
}

// Write queues an entry without blocking. A full buffer drops the entry.
func (l *Logger) Write(entry *LogEntry) {
	if entry == nil {
		return
	}

	select {
	case l.buffer <- entry:
	default:
		if l.dropped.Add(1)%100 == 1 {
			slog.Warn("audit log buffer full, dropping entries",
				"dropped_total", l.dropped.Load())
		}
	}
}

// Config returns the logger configuration.
func (l *Logger) Config() Config {
	return l.config
}

// Dropped returns how many entries have been discarded due to a full
// buffer since startup.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

// Close stops the flush loop, writes out whatever is buffered and closes
// the store. Call during graceful shutdown, after the HTTP server has
// stopped accepting requests.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.store.Close()
}

func (l *Logger) flushLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*LogEntry, 0, batchFlushThreshold)

	for {
		select {
		case entry := <-l.buffer:
			batch = append(batch, entry)
			if len(batch) >= batchFlushThreshold {
				l.flushBatch(batch)
				batch = make([]*LogEntry, 0, batchFlushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flushBatch(batch)
				batch = make([]*LogEntry, 0, batchFlushThreshold)
			}

		case <-l.done:
			// Drain whatever is still queued, then flush once more. The
			// buffer channel stays open so a straggling Write cannot panic.
			for {
				select {
				case entry := <-l.buffer:
					batch = append(batch, entry)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := l.store.Flush(ctx); err != nil {
				slog.Error("audit log store flush failed", "error", err)
			}
			cancel()
			return
		}
	}
}

func (l *Logger) flushBatch(batch []*LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := l.store.WriteBatch(ctx, batch); err != nil {
		slog.Error("audit log batch write failed", "error", err, "count", len(batch))
	}
}

// NoopLogger satisfies LoggerInterface when request logging is disabled.
type NoopLogger struct{}

func (l *NoopLogger) Write(_ *LogEntry) {}

func (l *NoopLogger) Config() Config {
	return Config{Enabled: false}
}

func (l *NoopLogger) Close() error {
	return nil
}

// LoggerInterface is implemented by Logger and NoopLogger.
type LoggerInterface interface {
	Write(entry *LogEntry)
	Config() Config
	Close() error
}
