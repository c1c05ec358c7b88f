package bulk

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trawlhq/trawl/internal/model"
)

// SessionRunner runs one query end to end. *pipeline.Sequencer satisfies
// this.
type SessionRunner interface {
	Run(ctx context.Context, query string) *model.Session
}

// Summary totals a bulk run.
type Summary struct {
	Queries   int
	Succeeded int // sessions that produced at least one result
	Failed    int
	Results   int
}

// Runner executes queries from a file with bounded concurrency.
type Runner struct {
	sessions SessionRunner
	writer   *ResultWriter
	workers  int
}

// NewRunner creates a Runner. A nil writer skips CSV output; workers below
// one run sequentially.
func NewRunner(sessions SessionRunner, writer *ResultWriter, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{sessions: sessions, writer: writer, workers: workers}
}

// RunFile streams queries from path and runs each through the pipeline.
// Failed sessions are logged and counted, never abort the batch; a broken
// input stream or output file does.
func (r *Runner) RunFile(ctx context.Context, path string, opts QueryOptions) (Summary, error) {
	queryCh, errCh := StreamQueries(ctx, path, opts)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var queries, succeeded, failed, results atomic.Int64
	for query := range queryCh {
		queries.Add(1)
		g.Go(func() error {
			sess := r.sessions.Run(gCtx, query)

			if sess.Status == model.StatusFailed {
				failed.Add(1)
				zap.L().Warn("bulk query failed",
					zap.String("query", query),
					zap.String("reason", string(sess.Reason)),
				)
			} else {
				succeeded.Add(1)
			}
			results.Add(int64(len(sess.Results)))

			if r.writer != nil {
				if err := r.writer.WriteSession(sess); err != nil {
					return err // output breakage aborts the batch
				}
			}
			return nil
		})
	}

	werr := g.Wait()
	serr := <-errCh

	summary := Summary{
		Queries:   int(queries.Load()),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Results:   int(results.Load()),
	}
	zap.L().Info("bulk run complete",
		zap.Int("queries", summary.Queries),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("results", summary.Results),
	)

	if serr != nil {
		return summary, serr
	}
	return summary, werr
}
