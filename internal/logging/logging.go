package logging

import (
	"time"
)

// LogEntry is an immutable snapshot of one log event awaiting shipment.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Logger    string
	Message   string
	Labels    map[string]string
}

// LogSender delivers one batch in a single network call.
type LogSender interface {
	SendBatch(entries []LogEntry) error
}

// SendObserver receives delivery counters. The metrics subsystem owns the
// counters; the shipper only reports into them.
type SendObserver interface {
	ObserveSent(n int)
	ObserveFailed(n int)
	ObserveDropped(n int)
}

// NopObserver discards all observations.
type NopObserver struct{}

func (NopObserver) ObserveSent(int)    {}
func (NopObserver) ObserveFailed(int)  {}
func (NopObserver) ObserveDropped(int) {}

type Config struct {
	BatchSize     int
	FlushInterval time.Duration
}

const (
	DefaultBatchSize     = 10
	DefaultFlushInterval = 5 * time.Second
)

// WithDefaults fills unset fields with the default batching bounds.
func (c Config) WithDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	return c
}
