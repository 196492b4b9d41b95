package bot

import (
	"context"
	"sync"
)

// Job is one unit of per-user work.
type Job func(ctx context.Context)

// Queue runs jobs for each user strictly in submission order while letting
// distinct users proceed in parallel, bounded by a global concurrency limit.
// It exists because two near-simultaneous messages from the same user would
// otherwise race on that user's history: both would read the same turns and
// both would append, producing interleaved context.
type Queue struct {
	mu      sync.Mutex
	workers map[string]*userWorker

	sem        chan struct{}
	bufferSize int
}

// userWorker serializes jobs for a single user. Workers are started lazily
// on a user's first message and live for the process lifetime, mirroring
// conversations, which are only ever evicted explicitly.
type userWorker struct {
	jobs chan Job
}

// NewQueue creates a queue allowing maxConcurrent jobs across all users and
// buffering up to bufferSize pending jobs per user.
func NewQueue(maxConcurrent int, bufferSize int) *Queue {
	return &Queue{
		workers:    make(map[string]*userWorker),
		sem:        make(chan struct{}, maxConcurrent),
		bufferSize: bufferSize,
	}
}

// Submit enqueues a job for a user. It never blocks; if the user's buffer is
// full the job is rejected and Submit returns false.
func (q *Queue) Submit(ctx context.Context, userID string, job Job) bool {
	worker := q.getOrStartWorker(ctx, userID)
	select {
	case worker.jobs <- job:
		return true
	default:
		return false
	}
}

func (q *Queue) getOrStartWorker(ctx context.Context, userID string) *userWorker {
	q.mu.Lock()
	defer q.mu.Unlock()

	if worker, ok := q.workers[userID]; ok {
		return worker
	}
	worker := &userWorker{jobs: make(chan Job, q.bufferSize)}
	q.workers[userID] = worker
	go q.runWorker(ctx, worker)
	return worker
}

func (q *Queue) runWorker(ctx context.Context, worker *userWorker) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-worker.jobs:
			select {
			case q.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			job(ctx)
			<-q.sem
		}
	}
}
