package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/motomart/pkg/queue"
)

var handled atomic.Int64

type countingJob struct {
	Fail bool `json:"fail"`
}

func (j *countingJob) JobName() string { return "test.Counting" }

func (j *countingJob) Handle() error {
	handled.Add(1)
	if j.Fail {
		return errors.New("boom")
	}
	return nil
}

func TestDispatchAndProcess(t *testing.T) {
	driver := queue.NewMemoryDriver()
	queue.SetDriver(driver)
	queue.Register("test.Counting", func() queue.Job { return &countingJob{} })

	results := make(chan queue.JobResult, 4)
	queue.OnResult(func(r queue.JobResult) { results <- r })
	defer queue.OnResult(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.StartWorkers(ctx, 1)

	require.NoError(t, queue.Dispatch(&countingJob{}))

	select {
	case r := <-results:
		assert.Equal(t, "test.Counting", r.Type)
		assert.NoError(t, r.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed in time")
	}
}

func TestFailedJobIsNotRetried(t *testing.T) {
	driver := queue.NewMemoryDriver()
	queue.SetDriver(driver)
	queue.Register("test.Counting", func() queue.Job { return &countingJob{} })

	results := make(chan queue.JobResult, 4)
	queue.OnResult(func(r queue.JobResult) { results <- r })
	defer queue.OnResult(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.StartWorkers(ctx, 1)

	before := handled.Load()
	require.NoError(t, queue.Dispatch(&countingJob{Fail: true}))

	select {
	case r := <-results:
		assert.Error(t, r.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed in time")
	}

	// Exactly one attempt: the failure must not re-enter the queue.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before+1, handled.Load())
	assert.Equal(t, 0, driver.Len())
}

func TestMemoryDriverFailsFastWhenFull(t *testing.T) {
	d := queue.NewMemoryDriver()
	var err error
	for i := 0; i < 100000; i++ {
		if err = d.Push([]byte("{}")); err != nil {
			break
		}
	}
	assert.Error(t, err, "driver should reject pushes once the buffer is full")
}
