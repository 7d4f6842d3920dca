package concurrent

import (
	"fmt"
	"runtime"

	"github.com/ogdakke/pathspec/internal/logger"
)

func NewWorkerPool(workerCount int, jobBufferSize int, match MatchFunc) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	return &WorkerPool{
		workerCount: workerCount,
		match:       match,
		jobs:        make(chan MatchJob, jobBufferSize),
		results:     make(chan MatchResult, jobBufferSize),
		done:        make(chan struct{}),
	}
}

// Start launches the workers. Results is closed, and then Done, once
// CloseJobs was called and every queued job has been answered.
func (wp *WorkerPool) Start() {
	logger.Debug("Starting worker pool", "workers", wp.workerCount)

	wp.wg.Add(wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}

	go func() {
		wp.wg.Wait()
		close(wp.results)
		close(wp.done)
	}()
}

func (wp *WorkerPool) WorkerCount() int {
	return wp.workerCount
}

func (wp *WorkerPool) AddJob(job MatchJob) {
	wp.jobs <- job
}

func (wp *WorkerPool) Jobs() chan<- MatchJob {
	return wp.jobs
}

func (wp *WorkerPool) CloseJobs() {
	close(wp.jobs)
}

func (wp *WorkerPool) Results() <-chan MatchResult {
	return wp.results
}

func (wp *WorkerPool) Done() <-chan struct{} {
	return wp.done
}

// Processed returns the number of paths handed to the match function.
func (wp *WorkerPool) Processed() int64 {
	return wp.processed.Load()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		logger.Trace("Matching partition", "worker_id", id, "job_id", job.ID, "paths", len(job.Paths))
		result := wp.run(job)
		wp.processed.Add(int64(len(job.Paths)))
		wp.results <- result
	}

	logger.Trace("Worker finished", "worker_id", id)
}

// run applies the match function to one job. A panicking match function
// fails its job instead of taking the pool down.
func (wp *WorkerPool) run(job MatchJob) (result MatchResult) {
	result.ID = job.ID
	defer func() {
		if r := recover(); r != nil {
			result.Matched = nil
			result.Err = fmt.Errorf("partition %d: match panicked: %v", job.ID, r)
		}
	}()

	result.Matched, result.Err = wp.match(job.Paths)
	return result
}
