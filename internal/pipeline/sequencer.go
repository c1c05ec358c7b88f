// Package pipeline sequences a session: resolve candidates once, then walk
// an ordered phase plan, dispatching batches until quota is met, the global
// deadline passes, or the candidate pool runs dry.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/config"
	"github.com/trawlhq/trawl/internal/dispatch"
	"github.com/trawlhq/trawl/internal/model"
)

// Resolver turns a query into ranked candidates. *search.Resolver satisfies
// this.
type Resolver interface {
	Resolve(ctx context.Context, query string, max int) ([]model.Candidate, error)
}

// BatchRunner executes one batch. *dispatch.Dispatcher satisfies this.
type BatchRunner interface {
	Dispatch(ctx context.Context, batch dispatch.Batch) dispatch.Result
}

// Sequencer runs sessions. Safe for concurrent use; each Run keeps its own
// state.
type Sequencer struct {
	resolver       Resolver
	runner         BatchRunner
	plan           Plan
	quota          int
	maxResults     int
	globalDeadline time.Duration
}

// New creates a Sequencer. When maxResults is not positive, the resolver is
// asked for as many candidates as the plan can attempt.
func New(resolver Resolver, runner BatchRunner, plan Plan, cfg config.SessionConfig, maxResults int) *Sequencer {
	if maxResults <= 0 {
		maxResults = plan.Capacity()
	}
	quota := cfg.Quota
	if quota < 1 {
		quota = 1
	}
	deadline := time.Duration(cfg.GlobalDeadlineSecs) * time.Second
	if deadline <= 0 {
		deadline = 90 * time.Second
	}
	return &Sequencer{
		resolver:       resolver,
		runner:         runner,
		plan:           plan,
		quota:          quota,
		maxResults:     maxResults,
		globalDeadline: deadline,
	}
}

// Run executes one session for query. The session is always finalized: a
// resolver error becomes a failed session, never an error return. Phases run
// strictly in order; a phase never starts after quota is met or the global
// deadline has passed, and no domain is attempted twice across phases.
func (s *Sequencer) Run(ctx context.Context, query string) *model.Session {
	start := time.Now()
	sess := &model.Session{
		ID:        uuid.New().String(),
		Query:     query,
		Quota:     s.quota,
		StartedAt: start.UTC(),
	}
	log := zap.L().With(zap.String("session", sess.ID), zap.String("query", query))

	deadline := start.Add(s.globalDeadline)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	candidates, err := s.resolver.Resolve(ctx, query, s.maxResults)
	if err != nil {
		log.Warn("query resolution failed", zap.Error(err))
		sess.Finalize(model.ReasonSearchFailed, time.Since(start))
		return sess
	}
	if len(candidates) == 0 {
		log.Info("no candidates for query")
		sess.Finalize(model.ReasonNoCandidates, time.Since(start))
		return sess
	}
	log.Info("candidates resolved", zap.Int("count", len(candidates)))

	attempted := make(map[string]bool, len(candidates))
	for _, ph := range s.plan.Phases {
		if sess.QuotaMet() || ctx.Err() != nil {
			break
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Info("global deadline reached, skipping remaining phases",
				zap.String("phase", ph.Name))
			break
		}

		picked := pick(candidates, attempted, ph.Take)
		if len(picked) == 0 {
			continue
		}
		for _, c := range picked {
			attempted[c.Domain] = true
		}

		// A phase never gets more wall clock than the session has left.
		batchDeadline := ph.BatchTimeout()
		if batchDeadline > remaining {
			batchDeadline = remaining
		}

		phaseStart := time.Now()
		res := s.runner.Dispatch(ctx, dispatch.Batch{
			Candidates:  picked,
			Quota:       s.quota - len(sess.Results),
			Ceiling:     ph.Ceiling,
			SiteTimeout: ph.SiteTimeout(),
			Deadline:    batchDeadline,
		})

		sess.Results = append(sess.Results, res.Results...)
		sess.Attempts = append(sess.Attempts, res.Attempts...)
		sess.Phases = append(sess.Phases, model.PhaseStats{
			Name:        ph.Name,
			Candidates:  len(picked),
			Successes:   len(res.Results),
			ElapsedMS:   time.Since(phaseStart).Milliseconds(),
			DeadlineHit: res.DeadlineHit,
		})
		log.Info("phase complete",
			zap.String("phase", ph.Name),
			zap.Int("candidates", len(picked)),
			zap.Int("successes", len(res.Results)),
			zap.Int("total", len(sess.Results)),
			zap.Bool("deadline_hit", res.DeadlineHit),
		)
	}

	sess.Finalize(model.ReasonNone, time.Since(start))
	log.Info("session finished",
		zap.String("status", string(sess.Status)),
		zap.Int("results", len(sess.Results)),
		zap.Int64("elapsed_ms", sess.ElapsedMS),
	)
	return sess
}

// pick takes up to n candidates whose domains have not been attempted yet,
// preserving rank order.
func pick(cands []model.Candidate, attempted map[string]bool, n int) []model.Candidate {
	var out []model.Candidate
	for _, c := range cands {
		if len(out) == n {
			break
		}
		if attempted[c.Domain] {
			continue
		}
		out = append(out, c)
	}
	return out
}
