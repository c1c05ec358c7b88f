// Package bulk runs many queries from a file through the pipeline, bounded
// by a worker limit, appending flat result rows to a CSV as each session
// finishes.
package bulk

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// QueryOptions configures how queries are read from an input file.
type QueryOptions struct {
	Column     int    // zero-based column holding the query, default 0
	SheetIndex int    // xlsx only, default 0
	SheetName  string // xlsx only; if set, overrides SheetIndex
	SkipRows   int    // rows to skip before reading queries
}

// headerWords are first-row cell values that mark a header row.
var headerWords = map[string]bool{
	"query":        true,
	"queries":      true,
	"search":       true,
	"search_query": true,
	"q":            true,
}

// StreamQueries opens path and streams one query per row. The format comes
// from the extension: .csv or .xlsx. A first row that looks like a header is
// skipped; blank rows are dropped. Caller must consume the query channel;
// both channels are closed when the stream ends.
func StreamQueries(ctx context.Context, path string, opts QueryOptions) (<-chan string, <-chan error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return streamCSVQueries(ctx, path, opts)
	case ".xlsx":
		return streamXLSXQueries(ctx, path, opts)
	}

	queryCh := make(chan string)
	errCh := make(chan error, 1)
	errCh <- eris.Errorf("bulk: unsupported query file %s (want .csv or .xlsx)", path)
	close(queryCh)
	close(errCh)
	return queryCh, errCh
}

func streamCSVQueries(ctx context.Context, path string, opts QueryOptions) (<-chan string, <-chan error) {
	queryCh := make(chan string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(queryCh)
		defer close(errCh)

		f, err := os.Open(path)
		if err != nil {
			errCh <- eris.Wrapf(err, "bulk: open %s", path)
			return
		}
		defer f.Close() //nolint:errcheck

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		row := 0
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "bulk: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "bulk: read csv row")
				return
			}
			row++

			if row <= opts.SkipRows {
				continue
			}
			query := cellAt(record, opts.Column)
			if query == "" {
				continue
			}
			if row == opts.SkipRows+1 && looksLikeHeader(query) {
				continue
			}

			select {
			case queryCh <- query:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "bulk: context cancelled")
				return
			}
		}
	}()

	return queryCh, errCh
}

func streamXLSXQueries(ctx context.Context, path string, opts QueryOptions) (<-chan string, <-chan error) {
	queryCh := make(chan string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(queryCh)
		defer close(errCh)

		f, err := xlsx.OpenFile(path)
		if err != nil {
			errCh <- eris.Wrapf(err, "bulk: open %s", path)
			return
		}
		sheet, err := pickSheet(f, opts)
		if err != nil {
			errCh <- err
			return
		}

		row := 0
		for _, r := range sheet.Rows {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "bulk: context cancelled")
				return
			}
			row++

			if row <= opts.SkipRows {
				continue
			}
			query := cellAt(rowToStrings(r), opts.Column)
			if query == "" {
				continue
			}
			if row == opts.SkipRows+1 && looksLikeHeader(query) {
				continue
			}

			select {
			case queryCh <- query:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "bulk: context cancelled")
				return
			}
		}
	}()

	return queryCh, errCh
}

func pickSheet(f *xlsx.File, opts QueryOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("bulk: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("bulk: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

func cellAt(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func looksLikeHeader(cell string) bool {
	return headerWords[strings.ToLower(cell)]
}
