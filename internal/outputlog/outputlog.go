// Package outputlog streams a per-row result log for CSV subscription imports.
package outputlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Columns appended to the input header.
const (
	ColAccountID      = "Bunny Account ID"
	ColSubscriptionID = "Bunny Subscription ID"
	ColStatus         = "Import Status"
)

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Entry is one input row plus its import outcome.
type Entry struct {
	Row            []string
	AccountID      string
	SubscriptionID string
	Success        bool
}

// MarshalEntry converts an Entry to a CSV record of width inputCols+3.
// Short rows are padded so every record matches the header.
func MarshalEntry(e Entry, inputCols int) []string {
	rec := make([]string, inputCols, inputCols+3)
	copy(rec, e.Row)
	status := StatusFailed
	if e.Success {
		status = StatusSuccess
	}
	return append(rec, e.AccountID, e.SubscriptionID, status)
}

// UnmarshalEntry splits a CSV record back into an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	n := len(record)
	if n < 3 {
		return Entry{}, fmt.Errorf("expected at least 3 fields, got %d", n)
	}
	status := record[n-1]
	if status != StatusSuccess && status != StatusFailed {
		return Entry{}, fmt.Errorf("unknown import status %q", status)
	}
	return Entry{
		Row:            record[:n-3],
		AccountID:      record[n-3],
		SubscriptionID: record[n-2],
		Success:        status == StatusSuccess,
	}, nil
}

// FileName returns subscriptions_output_<timestamp>.csv for now.
func FileName(now time.Time) string {
	ts := strings.ReplaceAll(now.UTC().Format("20060102T150405.000Z"), ".", "")
	return "subscriptions_output_" + ts + ".csv"
}

// Log writes entries as they happen. Every Append is flushed to disk.
type Log struct {
	path      string
	f         *os.File
	cw        *csv.Writer
	inputCols int
	failed    int
}

// Create opens path for writing and writes header plus the result columns.
func Create(path string, header []string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output log: %w", err)
	}

	l := &Log{path: path, f: f, cw: csv.NewWriter(f), inputCols: len(header)}
	full := append(append([]string{}, header...), ColAccountID, ColSubscriptionID, ColStatus)
	if err := l.write(full); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return l, nil
}

// Path is the file being written.
func (l *Log) Path() string { return l.path }

// Failed counts the failed entries appended so far.
func (l *Log) Failed() int { return l.failed }

// Append writes one entry.
func (l *Log) Append(e Entry) error {
	if !e.Success {
		l.failed++
	}
	return l.write(MarshalEntry(e, l.inputCols))
}

func (l *Log) write(rec []string) error {
	if err := l.cw.Write(rec); err != nil {
		return err
	}
	l.cw.Flush()
	return l.cw.Error()
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	l.cw.Flush()
	if err := l.cw.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

// Read returns the input header and all entries of an output log.
func Read(path string) ([]string, []Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening output log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]string, []Entry, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading output log CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	head := records[0]
	if len(head) < 3 || head[len(head)-1] != ColStatus {
		return nil, nil, fmt.Errorf("not an output log: last column is not %q", ColStatus)
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return head[:len(head)-3], entries, nil
}
