package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

type item struct {
	job   *Job
	due   time.Time
	index int
}

type dueHeap []*item

func (h dueHeap) Len() int           { return len(h) }
func (h dueHeap) Less(i, j int) bool { return h[i].due.Before(h[j].due) }
func (h dueHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *dueHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *dueHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// MemoryQueue is a single-process Queue. Jobs do not survive a restart.
type MemoryQueue struct {
	mu     sync.Mutex
	ready  dueHeap
	leased map[string]time.Time
	jobs   map[string]*Job
	dead   map[string]string
	lease  time.Duration
	now    func() time.Time
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue(lease time.Duration) *MemoryQueue {
	return &MemoryQueue{
		leased: make(map[string]time.Time),
		jobs:   make(map[string]*Job),
		dead:   make(map[string]string),
		lease:  lease,
		now:    time.Now,
	}
}

// SetClock overrides the time source.
func (q *MemoryQueue) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

func copyJob(job *Job) *Job {
	c := *job
	c.Payload = append([]byte(nil), job.Payload...)
	return &c
}

func (q *MemoryQueue) Enqueue(_ context.Context, job *Job, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.push(copyJob(job), q.now().Add(delay))
	return nil
}

// push schedules job. Caller holds mu.
func (q *MemoryQueue) push(job *Job, due time.Time) {
	q.jobs[job.ID] = job
	heap.Push(&q.ready, &item{job: job, due: due})
}

func (q *MemoryQueue) Claim(_ context.Context, n int) ([]*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for id, deadline := range q.leased {
		if !deadline.After(now) {
			delete(q.leased, id)
			if job, ok := q.jobs[id]; ok {
				heap.Push(&q.ready, &item{job: job, due: now})
			}
		}
	}

	var out []*Job
	for len(out) < n && q.ready.Len() > 0 && !q.ready[0].due.After(now) {
		it := heap.Pop(&q.ready).(*item)
		if _, ok := q.jobs[it.job.ID]; !ok {
			continue
		}
		q.leased[it.job.ID] = now.Add(q.lease)
		out = append(out, copyJob(it.job))
	}
	return out, nil
}

func (q *MemoryQueue) Ack(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.leased, job.ID)
	delete(q.jobs, job.ID)
	return nil
}

func (q *MemoryQueue) Retry(_ context.Context, job *Job, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	delete(q.leased, job.ID)
	q.push(copyJob(job), q.now().Add(delay))
	return nil
}

func (q *MemoryQueue) Bury(_ context.Context, job *Job, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.leased, job.ID)
	delete(q.jobs, job.ID)
	q.dead[job.ID] = reason
	return nil
}

// Pending returns copies of the jobs waiting to be claimed, in due order.
func (q *MemoryQueue) Pending() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make(dueHeap, len(q.ready))
	copy(items, q.ready)
	var out []*Job
	seen := make(map[string]bool)
	for items.Len() > 0 {
		it := heap.Pop(&items).(*item)
		if _, ok := q.jobs[it.job.ID]; ok && !seen[it.job.ID] {
			seen[it.job.ID] = true
			out = append(out, copyJob(it.job))
		}
	}
	return out
}

// Dead returns the reasons recorded for buried jobs, by job id.
func (q *MemoryQueue) Dead() map[string]string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[string]string, len(q.dead))
	for k, v := range q.dead {
		out[k] = v
	}
	return out
}
