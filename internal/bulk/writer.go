package bulk

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/trawlhq/trawl/internal/model"
)

// resultColumns is the output header. One row per scrape result.
var resultColumns = []string{
	"query", "session_id", "status", "rank", "url", "domain",
	"title", "tier", "kind", "elapsed_ms", "fetched_at", "payload_json",
}

// ResultWriter appends flat result rows to a CSV file, flushing after each
// session so partial output survives an interrupted run. Safe for
// concurrent use.
type ResultWriter struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewResultWriter creates (truncating) the output file and writes the
// header row.
func NewResultWriter(path string) (*ResultWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "bulk: create output %s", path)
	}
	w := csv.NewWriter(f)
	if err := w.Write(resultColumns); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "bulk: write header")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "bulk: flush header")
	}
	return &ResultWriter{f: f, w: w}, nil
}

// WriteSession appends one row per result in the session and flushes.
// Sessions without results write nothing.
func (rw *ResultWriter) WriteSession(sess *model.Session) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	for _, r := range sess.Results {
		payload, err := json.Marshal(r.Payload)
		if err != nil {
			return eris.Wrap(err, "bulk: marshal payload")
		}
		row := []string{
			sess.Query,
			sess.ID,
			string(sess.Status),
			strconv.Itoa(r.Candidate.Rank),
			r.Candidate.URL,
			r.Candidate.Domain,
			r.Title,
			string(r.Tier),
			string(r.Payload.Kind),
			strconv.FormatInt(r.ElapsedMS, 10),
			r.FetchedAt.Format(time.RFC3339),
			string(payload),
		}
		if err := rw.w.Write(row); err != nil {
			return eris.Wrap(err, "bulk: write row")
		}
	}

	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		return eris.Wrap(err, "bulk: flush")
	}
	return nil
}

// Close flushes and closes the output file.
func (rw *ResultWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.w.Flush()
	if err := rw.w.Error(); err != nil {
		_ = rw.f.Close()
		return eris.Wrap(err, "bulk: final flush")
	}
	if err := rw.f.Close(); err != nil {
		return eris.Wrap(err, "bulk: close output")
	}
	return nil
}
