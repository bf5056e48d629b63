package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/courtside/strokelab/internal/adapters/mq/queue"
	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job(i int) queue.Job {
	return queue.Job{Index: i, Next: model.PoseFrame{FrameID: "f", Timestamp: float64(i)}}
}

func TestEnqueueDequeue(t *testing.T) {
	ctx := context.Background()
	q := queue.NewInMemoryQueue(queue.WithCapacity(8))

	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(ctx, job(i)))
	}
	assert.Equal(t, 5, q.Len(ctx))
	require.NoError(t, q.Close())

	var got []int
	for j := range q.Dequeue(ctx) {
		got = append(got, j.Index)
	}
	assert.Len(t, got, 5)
}

func TestEnqueueAfterClose(t *testing.T) {
	ctx := context.Background()
	q := queue.NewInMemoryQueue()
	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	assert.False(t, q.Enqueue(ctx, job(0)))
	// Closing twice is a no-op.
	require.NoError(t, q.Close())
}

func TestEnqueueFull(t *testing.T) {
	ctx := context.Background()
	q := queue.NewInMemoryQueue(queue.WithCapacity(1))
	require.True(t, q.Enqueue(ctx, job(0)))
	assert.False(t, q.Enqueue(ctx, job(1)))
}

func TestDequeueRespectsContext(t *testing.T) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	ch := q.Dequeue(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("dequeue channel did not close after cancellation")
	}
}
