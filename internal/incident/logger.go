package incident

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LoggerConfig configures the async incident logger.
type LoggerConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// OnWriteError is called with the size of every batch the writer rejected.
	OnWriteError func(n int)
}

// AsyncLogger implements Logger with a buffered channel and a background
// worker that flushes to a Writer in batches. Records are never dropped:
// when the buffer is full they are written on a tracked overflow goroutine.
type AsyncLogger struct {
	ch     chan Record
	writer Writer
	cfg    LoggerConfig
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu       sync.RWMutex
	closed   bool
	overflow sync.WaitGroup
}

// NewAsyncLogger creates and starts an async incident logger.
func NewAsyncLogger(w Writer, cfg LoggerConfig) *AsyncLogger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &AsyncLogger{
		ch:     make(chan Record, cfg.BufferSize),
		writer: w,
		cfg:    cfg,
		cancel: cancel,
	}

	l.wg.Add(1)
	go l.worker(ctx)

	return l
}

// Log enqueues a record. It never blocks on the sink while the logger is open.
func (l *AsyncLogger) Log(_ context.Context, rec Record) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		l.flush([]Record{rec})
		return
	}

	select {
	case l.ch <- rec:
	default:
		slog.Warn("incident buffer full, writing out of band", "category", rec.Category)
		l.overflow.Add(1)
		go func() {
			defer l.overflow.Done()
			l.flush([]Record{rec})
		}()
	}
}

// Close flushes buffered records, waits for overflow writes and stops the worker.
func (l *AsyncLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
	l.flush(l.drainAll())
	l.overflow.Wait()
	return nil
}

func (l *AsyncLogger) worker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cfg.FlushInterval)
	defer ticker.Stop()

	var batch []Record

	for {
		select {
		case <-ctx.Done():
			batch = append(batch, l.drainAll()...)
			l.flush(batch)
			return

		case rec := <-l.ch:
			batch = append(batch, rec)
			if len(batch) >= l.cfg.BatchSize {
				l.flush(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = nil
			}
		}
	}
}

func (l *AsyncLogger) flush(records []Record) {
	if len(records) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.writer.WriteBatch(ctx, records); err != nil {
		slog.Error("incident flush failed", "error", err, "count", len(records))
		if l.cfg.OnWriteError != nil {
			l.cfg.OnWriteError(len(records))
		}
	}
}

func (l *AsyncLogger) drainAll() []Record {
	var records []Record
	for {
		select {
		case rec := <-l.ch:
			records = append(records, rec)
		default:
			return records
		}
	}
}
