// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"lease-scan/internal/detector"
	"lease-scan/internal/observability"
)

// MaxWorkers caps the automatic worker count
const MaxWorkers = 8

// ParallelProcessor scores document chunks concurrently
type ParallelProcessor struct {
	workers  int
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalChunks   int           `json:"total_chunks"`
	TotalMatches  int           `json:"total_matches"`
	TotalDuration time.Duration `json:"total_duration_ms"`
	WorkerCount   int           `json:"worker_count"`
	AvgChunkTime  time.Duration `json:"avg_chunk_time_ms"`
}

// DefaultWorkers is the CPU count capped at MaxWorkers
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return workers
}

// NewParallelProcessor creates a processor; workers <= 0 picks DefaultWorkers
func NewParallelProcessor(workers int, observer *observability.StandardObserver) *ParallelProcessor {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &ParallelProcessor{
		workers:  workers,
		observer: observer,
	}
}

// Workers returns the configured worker count
func (pp *ParallelProcessor) Workers() int {
	return pp.workers
}

// ScoreChunks scores every chunk and returns the matches indexed by chunk,
// so result[i] always belongs to chunks[i] whatever the worker count.
func (pp *ParallelProcessor) ScoreChunks(ctx context.Context, chunks []string, score ScoreFunc) ([][]detector.Match, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("parallel_processor", "score_chunks", fmt.Sprintf("%d chunks", len(chunks)))
	}

	fail := func(err error) ([][]detector.Match, *ProcessingStats, error) {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{
				"error":        err.Error(),
				"total_chunks": len(chunks),
			})
		}
		return nil, nil, err
	}

	out := make([][]detector.Match, len(chunks))
	var busy time.Duration

	if pp.workers <= 1 || len(chunks) <= 1 {
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			t := time.Now()
			out[i] = score(chunk)
			busy += time.Since(t)
		}
	} else {
		pool := NewWorkerPool(ctx, pp.workers, score, pp.observer)
		pool.Start()

		go func() {
			defer pool.Close()
			for i, chunk := range chunks {
				if !pool.Submit(&Job{Index: i, Chunk: chunk}) {
					return
				}
			}
		}()
		go pool.Stop()

		for result := range pool.Results() {
			out[result.Index] = result.Matches
			busy += result.Duration
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
	}

	total := 0
	for _, m := range out {
		total += len(m)
	}
	stats := &ProcessingStats{
		TotalChunks:   len(chunks),
		TotalMatches:  total,
		TotalDuration: time.Since(start),
		WorkerCount:   pp.workers,
		AvgChunkTime:  busy / time.Duration(max(len(chunks), 1)),
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"total_chunks":  stats.TotalChunks,
			"total_matches": stats.TotalMatches,
			"worker_count":  stats.WorkerCount,
		})
	}
	return out, stats, nil
}
