package bulk

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trawlhq/trawl/internal/model"
)

func sampleSession(query string, urls ...string) *model.Session {
	sess := &model.Session{
		ID:     "sess-" + query,
		Query:  query,
		Quota:  len(urls),
		Status: model.StatusQuotaMet,
	}
	for i, u := range urls {
		c := model.NewCandidate(u, "Title", "")
		c.Rank = i + 1
		sess.Results = append(sess.Results, model.ScrapeResult{
			Candidate: c,
			Title:     "Page Title",
			Text:      "text",
			Tier:      model.TierDirect,
			Payload: model.Payload{
				Kind:    model.KindGeneric,
				Generic: &model.GenericPayload{Description: "desc"},
			},
			ElapsedMS: 120,
			FetchedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		})
	}
	return sess
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestResultWriterWritesFlatRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewResultWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteSession(sampleSession("gaming chair", "https://a.com/1", "https://b.com/2")))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, resultColumns, rows[0])

	first := rows[1]
	assert.Equal(t, "gaming chair", first[0])
	assert.Equal(t, "sess-gaming chair", first[1])
	assert.Equal(t, "quota_met", first[2])
	assert.Equal(t, "1", first[3])
	assert.Equal(t, "https://a.com/1", first[4])
	assert.Equal(t, "a.com", first[5])
	assert.Equal(t, "Page Title", first[6])
	assert.Equal(t, "direct", first[7])
	assert.Equal(t, "generic", first[8])
	assert.Equal(t, "120", first[9])
	assert.Equal(t, "2026-03-14T09:30:00Z", first[10])

	var payload model.Payload
	require.NoError(t, json.Unmarshal([]byte(first[11]), &payload))
	assert.Equal(t, model.KindGeneric, payload.Kind)
	require.NotNil(t, payload.Generic)
	assert.Equal(t, "desc", payload.Generic.Description)
}

func TestResultWriterSkipsSessionsWithoutResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewResultWriter(path)
	require.NoError(t, err)

	failed := &model.Session{ID: "s", Query: "q", Status: model.StatusFailed, Reason: model.ReasonNoCandidates}
	require.NoError(t, w.WriteSession(failed))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	assert.Len(t, rows, 1, "only the header")
}

func TestResultWriterAccumulatesAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewResultWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteSession(sampleSession("first", "https://a.com/1")))
	require.NoError(t, w.WriteSession(sampleSession("second", "https://b.com/1", "https://c.com/1")))
	require.NoError(t, w.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, "first", rows[1][0])
	assert.Equal(t, "second", rows[2][0])
	assert.Equal(t, "second", rows[3][0])
}

func TestResultWriterRowsSurviveWithoutClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewResultWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteSession(sampleSession("q", "https://a.com/1")))

	// No Close: the per-session flush already put the row on disk.
	rows := readRows(t, path)
	assert.Len(t, rows, 2)
	require.NoError(t, w.Close())
}

func TestResultWriterCreateFailure(t *testing.T) {
	t.Parallel()

	_, err := NewResultWriter(filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
}
