package testutils

import (
	"fmt"
	"sync"
	"time"

	"produto-api/internal/logging"
)

type MockLogSender struct {
	mu          sync.Mutex
	sentBatches [][]logging.LogEntry
	shouldFail  bool
	failCalls   int
	Delay       time.Duration
}

func (m *MockLogSender) SendBatch(entries []logging.LogEntry) error {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shouldFail {
		m.failCalls++
		return fmt.Errorf("mock send failed")
	}

	batch := make([]logging.LogEntry, len(entries))
	copy(batch, entries)
	m.sentBatches = append(m.sentBatches, batch)
	return nil
}

func (m *MockLogSender) SetShouldFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
}

func (m *MockLogSender) GetSentBatches() [][]logging.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	batches := make([][]logging.LogEntry, len(m.sentBatches))
	copy(batches, m.sentBatches)
	return batches
}

func (m *MockLogSender) TotalEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, batch := range m.sentBatches {
		total += len(batch)
	}
	return total
}

func (m *MockLogSender) FailedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failCalls
}

type MockObserver struct {
	mu      sync.Mutex
	Sent    int
	Failed  int
	Dropped int
}

func (m *MockObserver) ObserveSent(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent += n
}

func (m *MockObserver) ObserveFailed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed += n
}

func (m *MockObserver) ObserveDropped(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dropped += n
}

func (m *MockObserver) Snapshot() (sent, failed, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sent, m.Failed, m.Dropped
}
