package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type payload struct {
	RowID string `json:"row_id"`
}

func newTestJob(t *testing.T, rowID string) *Job {
	t.Helper()
	job, err := NewJob(TypeDispatch, payload{RowID: rowID})
	require.NoError(t, err)
	return job
}

func TestMemoryQueue_DelayAndOrder(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(1700000000, 0)}
	q := NewMemoryQueue(time.Minute)
	q.SetClock(c.now)

	require.NoError(t, q.Enqueue(ctx, newTestJob(t, "late"), 20*time.Second))
	require.NoError(t, q.Enqueue(ctx, newTestJob(t, "early"), 10*time.Second))

	jobs, err := q.Claim(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	c.advance(15 * time.Second)
	jobs, err = q.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	var p payload
	require.NoError(t, jobs[0].Decode(&p))
	assert.Equal(t, "early", p.RowID)

	c.advance(10 * time.Second)
	jobs, err = q.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, jobs[0].Decode(&p))
	assert.Equal(t, "late", p.RowID)
}

func TestMemoryQueue_LeaseExpiryRedelivers(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(1700000000, 0)}
	q := NewMemoryQueue(time.Minute)
	q.SetClock(c.now)

	require.NoError(t, q.Enqueue(ctx, newTestJob(t, "r1"), 0))
	jobs, err := q.Claim(ctx, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	again, err := q.Claim(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again)

	c.advance(time.Minute)
	again, err = q.Claim(ctx, 1)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, jobs[0].ID, again[0].ID)

	require.NoError(t, q.Ack(ctx, again[0]))
	c.advance(2 * time.Minute)
	again, err = q.Claim(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMemoryQueue_RetryAndBury(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(1700000000, 0)}
	q := NewMemoryQueue(time.Minute)
	q.SetClock(c.now)

	require.NoError(t, q.Enqueue(ctx, newTestJob(t, "r1"), 0))
	jobs, err := q.Claim(ctx, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NoError(t, q.Retry(ctx, jobs[0], 5*time.Second))
	assert.Len(t, q.Pending(), 1)

	c.advance(5 * time.Second)
	jobs, err = q.Claim(ctx, 1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].Attempt)

	require.NoError(t, q.Bury(ctx, jobs[0], "boom"))
	assert.Empty(t, q.Pending())
	assert.Equal(t, "boom", q.Dead()[jobs[0].ID])
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, RetryDelay(2*time.Second, time.Minute, 0))
	assert.Equal(t, 8*time.Second, RetryDelay(2*time.Second, time.Minute, 2))
	assert.Equal(t, time.Minute, RetryDelay(2*time.Second, time.Minute, 10))
	assert.Zero(t, RetryDelay(0, time.Minute, 3))
}
