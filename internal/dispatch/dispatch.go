// Package dispatch fans a batch of candidates out over the tiered fetcher
// with bounded parallelism. The moment quota is met the rest of the batch is
// abandoned, not awaited: workers observe cancellation and unwind on their
// own while the caller moves on.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/trawlhq/trawl/internal/config"
	"github.com/trawlhq/trawl/internal/model"
)

// Fetcher runs the tier ladder for one candidate. *fetch.Fetcher satisfies
// this; tests substitute stubs.
type Fetcher interface {
	Fetch(ctx context.Context, cand model.Candidate, ceiling model.Tier) (*model.ScrapeResult, model.FetchAttempt)
}

// Batch is a bounded set of candidates dispatched together under one quota.
type Batch struct {
	Candidates []model.Candidate
	// Quota stops the batch early: once this many fetches succeed the
	// rest are abandoned.
	Quota   int
	Ceiling model.Tier
	// SiteTimeout bounds each individual fetch. Zero means the batch
	// context alone bounds it.
	SiteTimeout time.Duration
	// Deadline bounds the whole batch in wall-clock time. Zero means no
	// batch deadline.
	Deadline time.Duration
}

// Result is what a batch produced: successes in completion order, plus an
// attempt record for every candidate that finished before the batch ended.
type Result struct {
	Results     []model.ScrapeResult
	Attempts    []model.FetchAttempt
	DeadlineHit bool
}

// Dispatcher runs batches. Safe for concurrent use; all per-batch state
// lives in Dispatch's frame.
type Dispatcher struct {
	fetcher      Fetcher
	maxWorkers   int
	pollInterval time.Duration
}

// New creates a Dispatcher. Out-of-range config values fall back to the
// defaults (5 workers, 250ms poll).
func New(fetcher Fetcher, cfg config.DispatchConfig) *Dispatcher {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 5
	}
	poll := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Dispatcher{fetcher: fetcher, maxWorkers: workers, pollInterval: poll}
}

type completion struct {
	result  *model.ScrapeResult
	attempt model.FetchAttempt
}

// Dispatch runs the batch and returns once quota is met, the batch deadline
// passes, ctx is cancelled, or every candidate has finished. Individual
// fetch failures are absorbed into attempt records; they never count toward
// quota and never surface as errors. len(Result.Results) <= batch.Quota.
func (d *Dispatcher) Dispatch(ctx context.Context, batch Batch) Result {
	var res Result
	if len(batch.Candidates) == 0 || batch.Quota <= 0 {
		return res
	}

	// Workers run under their own context so meeting quota abandons them
	// without touching the caller's.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to batch size: an abandoned worker can always finish its
	// send and exit even though nobody is reading anymore.
	done := make(chan completion, len(batch.Candidates))

	sem := semaphore.NewWeighted(int64(d.poolSize(len(batch.Candidates))))
	for _, cand := range batch.Candidates {
		go d.work(runCtx, sem, cand, batch, done)
	}

	zap.L().Debug("batch dispatched",
		zap.Int("candidates", len(batch.Candidates)),
		zap.Int("quota", batch.Quota),
		zap.String("ceiling", string(batch.Ceiling)),
	)

	var deadlineAt time.Time
	if batch.Deadline > 0 {
		deadlineAt = time.Now().Add(batch.Deadline)
	}
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	// Single consumer loop: appending a result and checking quota is one
	// serialized step, so quota can never overshoot under races. The batch
	// deadline is enforced here at poll granularity, independent of
	// whatever state individual fetches are in.
	for pending := len(batch.Candidates); pending > 0; {
		select {
		case c := <-done:
			pending--
			res.Attempts = append(res.Attempts, c.attempt)
			if c.result == nil {
				continue
			}
			res.Results = append(res.Results, *c.result)
			if len(res.Results) >= batch.Quota {
				zap.L().Debug("quota met, abandoning rest of batch",
					zap.Int("pending", pending))
				return res
			}
		case <-ticker.C:
			if !deadlineAt.IsZero() && time.Now().After(deadlineAt) {
				res.DeadlineHit = true
				zap.L().Debug("batch deadline hit",
					zap.Int("pending", pending),
					zap.Int("successes", len(res.Results)))
				return res
			}
		case <-ctx.Done():
			return res
		}
	}
	return res
}

// poolSize bounds workers at min(batch size, configured max).
func (d *Dispatcher) poolSize(batchLen int) int {
	if batchLen < d.maxWorkers {
		return batchLen
	}
	return d.maxWorkers
}

func (d *Dispatcher) work(ctx context.Context, sem *semaphore.Weighted, cand model.Candidate, batch Batch, done chan<- completion) {
	if err := sem.Acquire(ctx, 1); err != nil {
		// Abandoned while still queued.
		done <- completion{attempt: model.FetchAttempt{
			Candidate: cand,
			Tier:      model.TierDirect,
			Outcome:   model.OutcomeCancelled,
			Err:       err.Error(),
		}}
		return
	}
	defer sem.Release(1)

	fctx := ctx
	if batch.SiteTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, batch.SiteTimeout)
		defer cancel()
	}

	result, attempt := d.fetcher.Fetch(fctx, cand, batch.Ceiling)
	done <- completion{result: result, attempt: attempt}
}
