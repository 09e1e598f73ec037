package archive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"3tcapital/biohoneypot/internal/core/interaction"
)

// Options configures a Forwarder.
type Options struct {
	Sink         interaction.Sink
	Logger       *slog.Logger
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// Forwarder copies captured records to a Sink on background workers so the
// request path never waits on the sink.
type Forwarder struct {
	sink         interaction.Sink
	log          *slog.Logger
	queue        chan interaction.Record
	workers      int
	writeTimeout time.Duration
	wg           sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	saved   atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewForwarder creates a forwarder. Call Start before enqueueing.
func NewForwarder(opts Options) *Forwarder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Forwarder{
		sink:         opts.Sink,
		log:          opts.Logger,
		queue:        make(chan interaction.Record, opts.QueueSize),
		workers:      opts.Workers,
		writeTimeout: opts.WriteTimeout,
	}
}

// Start launches the workers.
func (f *Forwarder) Start() {
	for i := 0; i < f.workers; i++ {
		f.wg.Add(1)
		go f.worker(i)
	}
}

// Enqueue hands rec to the workers. It returns false without blocking when
// the queue is full or the forwarder is stopped.
func (f *Forwarder) Enqueue(rec interaction.Record) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		f.dropped.Add(1)
		return false
	}
	select {
	case f.queue <- rec:
		return true
	default:
		f.dropped.Add(1)
		return false
	}
}

// Stop closes the queue and waits for queued records to be written.
func (f *Forwarder) Stop() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	f.wg.Wait()
	f.log.Info("interaction archive stopped",
		"saved", f.saved.Load(),
		"failed", f.failed.Load(),
		"dropped", f.dropped.Load(),
	)
}

// Counts reports how many records were saved, failed and dropped.
func (f *Forwarder) Counts() (saved, failed, dropped int64) {
	return f.saved.Load(), f.failed.Load(), f.dropped.Load()
}

func (f *Forwarder) worker(id int) {
	defer f.wg.Done()

	for rec := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
		err := f.sink.Save(ctx, rec)
		cancel()

		if err != nil {
			f.failed.Add(1)
			f.log.Warn("failed to archive interaction",
				"worker", id,
				"interaction_id", rec.ID,
				"error", err,
			)
			continue
		}
		f.saved.Add(1)
	}
}
