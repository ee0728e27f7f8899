package sourcing

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ProcessBatch runs the pipeline for every job description concurrently.
// The returned slice matches the input order regardless of completion
// order. A job that times out or panics is recorded with its error text
// and empty candidate lists; sibling jobs are unaffected.
//
// Job-level dispatch is one goroutine per job on purpose: only candidate
// scoring contends for the bounded pool, so a batch larger than the pool
// cannot deadlock it.
func (a *Agent) ProcessBatch(ctx context.Context, jobDescriptions []string, topN int) []JobResult {
	results := make([]JobResult, len(jobDescriptions))

	var wg sync.WaitGroup
	for i, jobDescription := range jobDescriptions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.runJobBounded(ctx, jobDescription, topN)
		}()
	}
	wg.Wait()

	return results
}

// runJobBounded runs one job under the per-job timeout. The timed-out run
// is abandoned, not cancelled mid-write: its goroutine finishes on its own
// and the result is discarded.
func (a *Agent) runJobBounded(ctx context.Context, jobDescription string, topN int) JobResult {
	jobCtx, cancel := context.WithTimeout(ctx, a.cfg.JobTimeout)
	defer cancel()

	done := make(chan JobResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("sourcing run panicked",
					zap.String("job", truncateJob(jobDescription)),
					zap.Any("panic", r),
				)
				done <- errorResult(jobDescription, fmt.Sprintf("%v", r))
			}
		}()
		done <- a.ProcessJob(jobCtx, jobDescription, topN)
	}()

	select {
	case result := <-done:
		return result
	case <-jobCtx.Done():
		a.logger.Warn("sourcing run exceeded job timeout",
			zap.String("job", truncateJob(jobDescription)),
		)
		return errorResult(jobDescription, jobCtx.Err().Error())
	}
}
