// Package queue provides best-effort background job processing.
//
// Jobs are serialized to JSON, pushed through a Driver (in-memory by
// default, Redis in production), and executed exactly once by the worker
// pool. There is no retry: a failed job is recorded, reported through the
// OnResult hook and metrics, and dropped. Callers that dispatch a job must
// never depend on its outcome.
//
//	// Define a job
//	type InvoiceEmailJob struct{ OrderID string }
//	func (j *InvoiceEmailJob) Handle() error { ... }
//
//	// Register at boot, dispatch anywhere
//	queue.Register("jobs.InvoiceEmail", func() queue.Job { return &InvoiceEmailJob{} })
//	queue.Dispatch(&InvoiceEmailJob{OrderID: id})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/motomart/pkg/logger"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle() error
}

// Named lets a job pick its registry name; otherwise %T is used.
type Named interface {
	JobName() string
}

// JobResult reports the outcome of one processed job to OnResult observers.
type JobResult struct {
	Type       string
	Err        error // nil on success
	FinishedAt time.Time
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	onResult func(JobResult)
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	driver:   NewMemoryDriver(),
}

// SetDriver swaps the underlying queue driver (e.g. Redis).
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// OnResult installs an observer called after every processed job. Used by
// tests and operational hooks to see fire-and-forget outcomes without
// coupling them to any request's latency. Pass nil to remove.
func OnResult(fn func(JobResult)) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.onResult = fn
}

// Register makes a job type available for deserialization by name.
// Call once at boot for every job type you define.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue. It returns once the job is enqueued;
// execution happens on a worker goroutine.
func Dispatch(job Job) error {
	return defaultManager.push(job)
}

func jobName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

func (m *Manager) push(job Job) error {
	typeName := jobName(job)

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}

	env, err := json.Marshal(envelope{Type: typeName, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	return d.Push(env)
}

// StartWorkers launches n concurrent workers that process jobs from the
// queue until ctx is cancelled.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go defaultManager.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			m.mu.RLock()
			d := m.driver
			m.mu.RUnlock()

			raw, err := d.Pop(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if raw == nil {
				continue
			}

			m.process(raw)
		}
	}
}

func (m *Manager) process(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.run(job, env.Type)
}

// run executes the job exactly once. Failure is terminal: observers and
// metrics see it, nothing retries it.
func (m *Manager) run(job Job, typeName string) {
	start := time.Now()
	err := job.Handle()

	status := "success"
	if err != nil {
		status = "failed"
		logger.Error("queue: job failed", "type", typeName, "error", err)
	} else {
		logger.Info("queue: job processed", "type", typeName)
	}
	metrics.RecordQueueJob(typeName, status, start)

	m.mu.RLock()
	hook := m.onResult
	m.mu.RUnlock()
	if hook != nil {
		hook(JobResult{Type: typeName, Err: err, FinishedAt: time.Now()})
	}
}
