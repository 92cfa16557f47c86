package queue

import (
	"context"
	"sort"
	"sync"
	"time"
)

type scheduledJob struct {
	at  time.Time
	job Job
}

// MemoryDelayQueue is an in-process delay queue for tests and single-node
// development. Scheduled jobs are lost on restart; the periodic sweep covers them.
type MemoryDelayQueue struct {
	mu   sync.Mutex
	jobs []scheduledJob
}

// NewMemoryDelayQueue creates an empty in-process queue.
func NewMemoryDelayQueue() *MemoryDelayQueue {
	return &MemoryDelayQueue{}
}

func (q *MemoryDelayQueue) Schedule(_ context.Context, executeAt time.Time, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := sort.Search(len(q.jobs), func(i int) bool { return q.jobs[i].at.After(executeAt) })
	q.jobs = append(q.jobs, scheduledJob{})
	copy(q.jobs[i+1:], q.jobs[i:])
	q.jobs[i] = scheduledJob{at: executeAt, job: job}
	return nil
}

func (q *MemoryDelayQueue) Due(_ context.Context, now time.Time, limit int) ([]Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(q.jobs) && n < limit && !q.jobs[n].at.After(now) {
		n++
	}
	due := make([]Job, n)
	for i := 0; i < n; i++ {
		due[i] = q.jobs[i].job
	}
	q.jobs = q.jobs[n:]
	return due, nil
}

// Len reports the number of scheduled jobs.
func (q *MemoryDelayQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}
