package model

import "time"

// Tier identifies one extraction strategy, in increasing cost order.
type Tier string

const (
	TierDirect    Tier = "direct"
	TierExtracted Tier = "extracted"
	TierRendered  Tier = "rendered"
)

// Cost returns the relative cost rank of a tier. Heavier tiers rank higher.
func (t Tier) Cost() int {
	switch t {
	case TierDirect:
		return 1
	case TierExtracted:
		return 2
	case TierRendered:
		return 3
	}
	return 0
}

// Allows reports whether a fetch capped at ceiling t may use tier other.
func (t Tier) Allows(other Tier) bool {
	return other.Cost() <= t.Cost()
}

// Outcome classifies how a fetch attempt ended.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeTimeout          Outcome = "timeout"
	OutcomeBlocked          Outcome = "blocked"
	OutcomeNonHTML          Outcome = "non_html"
	OutcomeExtractionFailed Outcome = "extraction_failed"
	OutcomeCancelled        Outcome = "cancelled"
)

// FetchAttempt records one execution of the tiered fetcher against a
// candidate: the deepest tier reached, elapsed time, and the outcome.
type FetchAttempt struct {
	Candidate Candidate `json:"candidate"`
	Tier      Tier      `json:"tier"`
	Outcome   Outcome   `json:"outcome"`
	ElapsedMS int64     `json:"elapsed_ms"`
	Err       string    `json:"error,omitempty"`
}

// ScrapeResult is a candidate plus its extracted content and the tier that
// produced it. Immutable once created.
type ScrapeResult struct {
	Candidate   Candidate `json:"candidate"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text"`
	Markdown    string    `json:"markdown,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Tier        Tier      `json:"tier"`
	Payload     Payload   `json:"payload"`
	ElapsedMS   int64     `json:"elapsed_ms"`
	FetchedAt   time.Time `json:"fetched_at"`
}
