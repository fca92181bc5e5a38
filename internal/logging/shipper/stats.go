package shipper

import (
	"sync"
)

// Stats is a point-in-time snapshot of the shipper's delivery counters.
type Stats struct {
	Sent       int
	Failed     int
	Dropped    int
	Batches    int
	QueueDepth int
	State      string
}

type counters struct {
	mu      sync.RWMutex
	sent    int
	failed  int
	dropped int
	batches int
}

func (c *counters) addSent(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent += n
	c.batches++
}

func (c *counters) addFailed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed += n
}

func (c *counters) addDropped(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped += n
}

func (c *counters) snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Sent:    c.sent,
		Failed:  c.failed,
		Dropped: c.dropped,
		Batches: c.batches,
	}
}
