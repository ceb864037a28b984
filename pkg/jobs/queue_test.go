package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var handled []string
	done := make(chan struct{}, 2)

	q := NewQueue("render", func(ctx context.Context, job Job) error {
		mu.Lock()
		handled = append(handled, job.ID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "batch-1", Type: "report-cards"}))
	require.NoError(t, q.Enqueue(Job{ID: "batch-2", Type: "report-cards"}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("jobs were not handled in time")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"batch-1", "batch-2"}, handled)
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := NewQueue("render", func(ctx context.Context, job Job) error {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			return errors.New("transient render failure")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "batch-1"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never retried")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("render", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "batch-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}
