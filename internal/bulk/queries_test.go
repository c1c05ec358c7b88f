package bulk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "queries.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func collect(t *testing.T, queryCh <-chan string, errCh <-chan error) []string {
	t.Helper()
	var queries []string
	for q := range queryCh {
		queries = append(queries, q)
	}
	for err := range errCh {
		require.NoError(t, err)
	}
	return queries
}

func TestStreamQueriesCSV(t *testing.T) {
	path := writeCSV(t, "query\nrtx 4070 super price\nbest ssd 2tb\n")

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{})
	queries := collect(t, queryCh, errCh)

	assert.Equal(t, []string{"rtx 4070 super price", "best ssd 2tb"}, queries)
}

func TestStreamQueriesCSVWithoutHeader(t *testing.T) {
	path := writeCSV(t, "rtx 4070 super price\nbest ssd 2tb\n")

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{})
	queries := collect(t, queryCh, errCh)

	assert.Equal(t, []string{"rtx 4070 super price", "best ssd 2tb"}, queries)
}

func TestStreamQueriesCSVColumnAndBlanks(t *testing.T) {
	path := writeCSV(t, "id,query\n1,first query\n2,\n3,second query\n")

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{Column: 1})
	queries := collect(t, queryCh, errCh)

	assert.Equal(t, []string{"first query", "second query"}, queries)
}

func TestStreamQueriesCSVSkipRows(t *testing.T) {
	path := writeCSV(t, "exported 2026-08-01\nquery\nonly one\n")

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{SkipRows: 1})
	queries := collect(t, queryCh, errCh)

	assert.Equal(t, []string{"only one"}, queries)
}

func TestStreamQueriesXLSX(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Query"},
			{"m2 macbook air review"},
			{""},
			{"thinkpad x1 carbon gen 12"},
		},
	})

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{})
	queries := collect(t, queryCh, errCh)

	assert.Equal(t, []string{"m2 macbook air review", "thinkpad x1 carbon gen 12"}, queries)
}

func TestStreamQueriesXLSXSheetName(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Ignore": {{"wrong"}},
		"Real":   {{"the query"}},
	})

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{SheetName: "Real"})
	queries := collect(t, queryCh, errCh)

	assert.Equal(t, []string{"the query"}, queries)
}

func TestStreamQueriesXLSXUnknownSheet(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{"Sheet1": {{"q"}}})

	queryCh, errCh := StreamQueries(context.Background(), path, QueryOptions{SheetName: "Missing"})
	for range queryCh { //nolint:revive // drain
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStreamQueriesUnsupportedExtension(t *testing.T) {
	t.Parallel()

	queryCh, errCh := StreamQueries(context.Background(), "queries.txt", QueryOptions{})
	for range queryCh { //nolint:revive // drain
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestStreamQueriesMissingFile(t *testing.T) {
	t.Parallel()

	queryCh, errCh := StreamQueries(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), QueryOptions{})
	for range queryCh { //nolint:revive // drain
	}
	require.Error(t, <-errCh)
}

func TestStreamQueriesContextCancellation(t *testing.T) {
	rows := "query\n"
	for i := 0; i < 500; i++ {
		rows += "some query\n"
	}
	path := writeCSV(t, rows)

	ctx, cancel := context.WithCancel(context.Background())
	queryCh, errCh := StreamQueries(ctx, path, QueryOptions{})

	count := 0
	for range queryCh {
		count++
		if count >= 3 {
			cancel()
			break
		}
	}
	for range queryCh { //nolint:revive // drain
	}
	for range errCh { //nolint:revive // drain
	}
	cancel()
}

func TestLooksLikeHeader(t *testing.T) {
	t.Parallel()

	assert.True(t, looksLikeHeader("query"))
	assert.True(t, looksLikeHeader("Query"))
	assert.True(t, looksLikeHeader("SEARCH"))
	assert.False(t, looksLikeHeader("ryzen 5 5600x"))
	assert.False(t, looksLikeHeader(""))
}
