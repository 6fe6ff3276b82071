// Package feed is the boundary with the spreadsheet-parsing collaborator. It
// turns uploaded CSV/XLSX files into a lazy, finite sequence of column→value
// rows and normalizes them into the fixed per-source row shapes the
// reconciler consumes. It never touches the canonical store.
package feed

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Row maps a trimmed column header to the raw cell text of one record.
type Row map[string]string

// Get returns the trimmed cell for a column, "" when the column is absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Feed is a lazy, finite, non-restartable row sequence. Next returns io.EOF
// after the last row; any other error is fatal for the whole run.
type Feed interface {
	Next() (Row, error)
}

// UnreadableError means the feed itself could not be opened or tokenized.
// It aborts the run: the import log is marked failed with zero counters.
type UnreadableError struct {
	Reason string
	Err    error
}

func (e *UnreadableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unreadable feed: %s: %v", e.Reason, e.Err)
	}
	return "unreadable feed: " + e.Reason
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// ValidationError marks a single malformed row: missing identity field or a
// numeric cell that fails to parse. The row is counted as failed and the run
// continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid row: field %q: %s", e.Field, e.Reason)
}

// Opener defers opening a feed until the import run has been logged, so an
// unreadable upload still produces a failed ImportLog entry.
type Opener func() (Feed, error)

// Open picks a reader by file extension. Unknown extensions are unreadable.
func Open(filename string, r io.Reader) (Feed, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return NewCSVFeed(r)
	case ".xlsx", ".xls":
		return NewXLSXFeed(r)
	default:
		return nil, &UnreadableError{Reason: fmt.Sprintf("unsupported file type %q", filepath.Ext(filename))}
	}
}

// SliceFeed serves rows from memory. Used by tests and by callers that
// already hold tokenized rows.
type SliceFeed struct {
	rows []Row
	pos  int
}

func NewSliceFeed(rows ...Row) *SliceFeed { return &SliceFeed{rows: rows} }

func (f *SliceFeed) Next() (Row, error) {
	if f.pos >= len(f.rows) {
		return nil, io.EOF
	}
	row := f.rows[f.pos]
	f.pos++
	return row, nil
}
