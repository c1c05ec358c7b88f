package model

import "time"

// SessionStatus is the terminal outcome of a session.
type SessionStatus string

const (
	StatusQuotaMet SessionStatus = "quota_met"
	StatusPartial  SessionStatus = "partial"
	StatusFailed   SessionStatus = "failed"
)

// FailReason categorizes a failed session.
type FailReason string

const (
	ReasonNone         FailReason = ""
	ReasonSearchFailed FailReason = "search_failed"
	ReasonNoCandidates FailReason = "no_candidates"
	ReasonExhausted    FailReason = "all_candidates_exhausted"
)

// PhaseStats summarizes one sequencer phase.
type PhaseStats struct {
	Name        string `json:"name"`
	Candidates  int    `json:"candidates"`
	Successes   int    `json:"successes"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	DeadlineHit bool   `json:"deadline_hit,omitempty"`
}

// Session is the overall run for one query: accumulated results and
// attempts, per-phase stats, and the terminal status. Finalized exactly
// once before being returned to the caller.
type Session struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Quota     int            `json:"quota"`
	Results   []ScrapeResult `json:"results"`
	Attempts  []FetchAttempt `json:"attempts,omitempty"`
	Phases    []PhaseStats   `json:"phases,omitempty"`
	Status    SessionStatus  `json:"status"`
	Reason    FailReason     `json:"reason,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

// QuotaMet reports whether accumulated successes satisfy the quota.
func (s *Session) QuotaMet() bool {
	return s.Quota > 0 && len(s.Results) >= s.Quota
}

// Finalize sets the terminal status from accumulated results. The reason is
// only recorded on failure; a zero-result session with no explicit reason is
// classified as all candidates exhausted.
func (s *Session) Finalize(reason FailReason, elapsed time.Duration) {
	s.ElapsedMS = elapsed.Milliseconds()
	switch {
	case s.QuotaMet():
		s.Status = StatusQuotaMet
	case len(s.Results) > 0:
		s.Status = StatusPartial
	default:
		s.Status = StatusFailed
		if reason == ReasonNone {
			reason = ReasonExhausted
		}
		s.Reason = reason
	}
}
