package walkforward

import (
	"context"
	"runtime"
	"sync"
)

// workerPool runs fold evaluations in parallel. Folds are independent
// given the shared read-only feature matrix, and each fold writes only
// its own disjoint slice of the out-of-fold prediction series, so no
// lock is needed on the output.
type workerPool struct {
	workerCount int
	jobQueue    chan foldJob
	resultQueue chan foldOutcome
	wg          sync.WaitGroup
}

type foldJob struct {
	fold Fold
	run  func(Fold) foldOutcome
}

func newWorkerPool(workerCount, bufferSize int) *workerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &workerPool{
		workerCount: workerCount,
		jobQueue:    make(chan foldJob, bufferSize),
		resultQueue: make(chan foldOutcome, bufferSize),
	}
}

func (wp *workerPool) start(ctx context.Context) {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

// stop closes the job queue, waits for in-flight folds to finish and
// then closes the result queue.
func (wp *workerPool) stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// submit queues a fold unless the context has been cancelled.
// Cancellation is cooperative at fold granularity: already-committed
// fold results are never discarded.
func (wp *workerPool) submit(ctx context.Context, job foldJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *workerPool) results() <-chan foldOutcome {
	return wp.resultQueue
}

func (wp *workerPool) worker(ctx context.Context) {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			select {
			case wp.resultQueue <- job.run(job.fold):
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
