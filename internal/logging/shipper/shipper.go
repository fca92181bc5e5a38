package shipper

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"produto-api/internal/logging"
)

// State is the process-wide lifecycle of a Shipper.
type State int32

const (
	StateRunning State = iota
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Shipper queues log entries and flushes them to a LogSender in batches,
// either when BatchSize entries are queued or when FlushInterval elapses
// since the last flush. Producers never block: the queue is unbounded and
// only the single background worker performs network I/O. Delivery is
// at-most-once; a failed batch is discarded, not retried.
type Shipper struct {
	sender   logging.LogSender
	observer logging.SendObserver
	config   logging.Config
	// console receives the shipper's own diagnostics and the fallback
	// output for entries enqueued after stop. It must not route back
	// through the shipper.
	console *zap.Logger

	mu      sync.Mutex
	queue   []logging.LogEntry
	state   State
	started bool

	wake    chan struct{}
	quit    chan struct{}
	drained chan struct{}
	wg      sync.WaitGroup

	startOnce    sync.Once
	shutdownOnce sync.Once

	counters counters
}

type Option func(*Shipper)

// WithObserver sets the external delivery counters (success/failure/drop).
func WithObserver(o logging.SendObserver) Option {
	return func(s *Shipper) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithConsole sets the logger for the shipper's own diagnostics and for the
// stopped-state fallback path.
func WithConsole(l *zap.Logger) Option {
	return func(s *Shipper) {
		if l != nil {
			s.console = l
		}
	}
}

func New(sender logging.LogSender, config logging.Config, opts ...Option) *Shipper {
	s := &Shipper{
		sender:   sender,
		observer: logging.NopObserver{},
		config:   config.WithDefaults(),
		console:  zap.NewNop(),
		state:    StateRunning,
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		drained:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background flush worker. Safe to call once per Shipper.
func (s *Shipper) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()
		s.wg.Add(1)
		go s.run()
	})
}

// Enqueue appends an entry to the queue. It never blocks and never fails
// from the caller's perspective; after shutdown the entry goes to the
// console fallback instead.
func (s *Shipper) Enqueue(entry logging.LogEntry) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		s.counters.addDropped(1)
		s.observer.ObserveDropped(1)
		s.console.Info(entry.Message,
			zap.String("level", entry.Level),
			zap.String("logger", entry.Logger),
			zap.String("fallback", "shipper-stopped"),
		)
		return
	}
	s.queue = append(s.queue, entry)
	full := len(s.queue) >= s.config.BatchSize
	s.mu.Unlock()

	if full {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Shutdown transitions the shipper to shutting-down, waits for one final
// drain covering all queued entries and then marks it stopped. If timeout
// elapses first, shutdown proceeds anyway and the remainder is dropped; the
// returned error reports that, and it is never fatal to the host.
func (s *Shipper) Shutdown(timeout time.Duration) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.state = StateShuttingDown
		started := s.started
		s.mu.Unlock()

		close(s.quit)

		// without a worker there is nothing to drain; waiting would burn
		// the whole timeout on an idle channel
		var timedOut bool
		if started {
			timer := time.NewTimer(timeout)
			defer timer.Stop()

			select {
			case <-s.drained:
			case <-timer.C:
				timedOut = true
			}
		}

		s.mu.Lock()
		s.state = StateStopped
		remaining := len(s.queue)
		s.queue = nil
		s.mu.Unlock()

		if remaining > 0 {
			s.counters.addDropped(remaining)
			s.observer.ObserveDropped(remaining)
		}
		if timedOut {
			s.console.Warn("shipper shutdown timed out, dropping queued entries",
				zap.Duration("timeout", timeout),
				zap.Int("dropped", remaining),
			)
			err = fmt.Errorf("shipper shutdown timed out after %s with %d entries queued", timeout, remaining)
		}
	})
	return err
}

// State reports the current lifecycle state.
func (s *Shipper) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats snapshots the shipper's counters and queue depth.
func (s *Shipper) Stats() Stats {
	st := s.counters.snapshot()
	s.mu.Lock()
	st.QueueDepth = len(s.queue)
	st.State = s.state.String()
	s.mu.Unlock()
	return st
}

func (s *Shipper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.wake:
			if s.flushFull() {
				ticker.Reset(s.config.FlushInterval)
			}
		case <-ticker.C:
			s.flushAll()
		case <-s.quit:
			s.flushAll()
			close(s.drained)
			return
		}
	}
}

// flushFull sends as many full batches as are queued. Partial batches wait
// for the interval tick.
func (s *Shipper) flushFull() bool {
	flushed := false
	for {
		batch := s.takeBatch(s.config.BatchSize)
		if batch == nil {
			return flushed
		}
		s.send(batch)
		flushed = true
	}
}

// flushAll drains everything currently queued in chunks of at most BatchSize.
func (s *Shipper) flushAll() {
	for {
		batch := s.takeBatch(1)
		if batch == nil {
			return
		}
		s.send(batch)
	}
}

// takeBatch removes up to BatchSize entries if at least min are queued.
// The lock is never held across the send.
func (s *Shipper) takeBatch(min int) []logging.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) < min || len(s.queue) == 0 {
		return nil
	}
	n := s.config.BatchSize
	if len(s.queue) < n {
		n = len(s.queue)
	}
	batch := make([]logging.LogEntry, n)
	copy(batch, s.queue[:n])
	s.queue = s.queue[n:]
	return batch
}

func (s *Shipper) send(batch []logging.LogEntry) {
	if err := s.sender.SendBatch(batch); err != nil {
		s.counters.addFailed(len(batch))
		s.observer.ObserveFailed(len(batch))
		s.console.Warn("failed to send log batch",
			zap.Int("entries", len(batch)),
			zap.Error(err),
		)
		return
	}
	s.counters.addSent(len(batch))
	s.observer.ObserveSent(len(batch))
}
