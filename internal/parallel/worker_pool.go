// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"lease-scan/internal/detector"
	"lease-scan/internal/observability"
)

// ScoreFunc scores one chunk and returns its accepted matches
type ScoreFunc func(chunk string) []detector.Match

// WorkerPool scores chunks on a fixed number of goroutines
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	score    ScoreFunc
	observer *observability.StandardObserver
}

// Job is one chunk to score
type Job struct {
	Index int
	Chunk string
}

// Result carries a chunk's matches back with its index so callers can
// restore document order
type Result struct {
	Index    int
	Matches  []detector.Match
	Duration time.Duration
}

// NewWorkerPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewWorkerPool(ctx context.Context, workers int, score ScoreFunc, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		score:    score,
		observer: observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop waits for the workers to drain and closes the results channel.
// The jobs channel must already be closed.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit queues a job; it returns false if the pool was cancelled first
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if wp.ctx.Err() != nil {
			continue // drain without work once cancelled
		}
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
		}
	}
}

func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()
	matches := wp.score(job.Chunk)
	duration := time.Since(start)

	if wp.observer != nil && wp.observer.DebugObserver != nil {
		wp.observer.DebugObserver.LogMetric("worker_pool", "chunk_matches", map[string]int{
			"worker": workerID,
			"chunk":  job.Index,
			"count":  len(matches),
		})
	}

	return &Result{
		Index:    job.Index,
		Matches:  matches,
		Duration: duration,
	}
}
