// Package processor runs content analyses for many queries in parallel using
// a worker pool.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/wcxxx57/bilibili-study-tool/internal/contentfilter"
	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
)

const defaultConcurrency = 10

// Request is one query with its result items to analyze.
type Request struct {
	Query string               `json:"query"`
	Items []contentfilter.Item `json:"items"`
}

// Result pairs a request with its analysis. Results keep the order of the
// input requests.
type Result struct {
	Query    string                        `json:"query"`
	Analysis *contentfilter.AnalysisResult `json:"analysis"`
}

// BatchProcessor analyzes batches of queries in parallel.
type BatchProcessor struct {
	analyzer    *contentfilter.Analyzer
	concurrency int
	logger      logger.Logger
}

// NewBatchProcessor creates a batch processor with the given worker count.
func NewBatchProcessor(analyzer *contentfilter.Analyzer, concurrency int, log logger.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      log,
	}
}

// Process analyzes all requests using the worker pool and returns results in
// input order. Workers stop early when ctx is cancelled; unprocessed slots
// keep a nil Analysis.
func (b *BatchProcessor) Process(ctx context.Context, requests []Request) []Result {
	if len(requests) == 0 {
		return []Result{}
	}

	b.logger.Debug("starting batch analysis",
		logger.Int("batch_size", len(requests)),
		logger.Int("concurrency", b.concurrency),
	)
	start := time.Now()

	results := make([]Result, len(requests))
	jobs := make(chan int, len(requests))

	var wg sync.WaitGroup
	workers := min(b.concurrency, len(requests))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[i] = Result{
					Query:    requests[i].Query,
					Analysis: b.analyzer.Analyze(ctx, requests[i].Query, requests[i].Items),
				}
			}
		}()
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if results[i].Analysis == nil {
			results[i].Query = requests[i].Query
		}
	}

	b.logger.Debug("batch analysis complete",
		logger.Int("total", len(requests)),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return results
}
