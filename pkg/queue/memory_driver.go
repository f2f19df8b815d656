package queue

import (
	"context"
	"fmt"
)

// MemoryDriver is the default in-process queue backend: a buffered channel.
// Jobs do not survive a restart, which is acceptable for the best-effort
// deliveries this application queues.
type MemoryDriver struct {
	jobs chan []byte
}

const memoryQueueDepth = 1024

// NewMemoryDriver creates an in-memory queue driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{jobs: make(chan []byte, memoryQueueDepth)}
}

// Push adds a payload to the queue. Fails fast when the buffer is full
// rather than blocking a request handler.
func (d *MemoryDriver) Push(payload []byte) error {
	select {
	case d.jobs <- payload:
		return nil
	default:
		return fmt.Errorf("queue/memory: queue full (%d jobs)", memoryQueueDepth)
	}
}

// Pop blocks until a job is available or ctx is cancelled.
func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.jobs:
		return payload, nil
	}
}

// Len reports the number of queued jobs. Used by tests.
func (d *MemoryDriver) Len() int { return len(d.jobs) }
