// Package batch submits records one at a time and aggregates the outcome.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bunnyapp/bunny-cli/internal/platform"
)

// Status classifies a finished batch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// ErrBatchFailed is returned by commands when every record failed.
var ErrBatchFailed = errors.New("import failed: no records were imported")

// RecordResult is the outcome of one submission.
type RecordResult struct {
	Identifier string
	Success    bool
	Ref        string // id of the created remote record
	Message    string
}

// Result is the outcome of a whole batch.
type Result struct {
	Status       Status
	SuccessCount int
	ErrorCount   int
	Total        int
	Results      []RecordResult
}

// Errors returns the failed record results in submission order.
func (r *Result) Errors() []RecordResult {
	var out []RecordResult
	for _, rr := range r.Results {
		if !rr.Success {
			out = append(out, rr)
		}
	}
	return out
}

// Err returns ErrBatchFailed for a failed batch and nil otherwise.
func (r *Result) Err() error {
	if r.Status == StatusFailed {
		return ErrBatchFailed
	}
	return nil
}

// SubmitFunc sends one record and returns the created record's id.
type SubmitFunc[T any] func(ctx context.Context, rec T) (string, error)

// Options tune a Run.
type Options[T any] struct {
	// Identify names a record for diagnostics. Defaults to "Row N".
	Identify func(i int, rec T) string
	// Progress is called after every record, successful or not.
	Progress func(done, total int)
	// OnResult is called after every record with its result.
	OnResult func(i int, rec T, rr RecordResult)
	Log      zerolog.Logger
}

// Run submits every record in order. A failing record is recorded and the
// loop moves on; Run itself never fails.
func Run[T any](ctx context.Context, records []T, submit SubmitFunc[T], opts Options[T]) *Result {
	identify := opts.Identify
	if identify == nil {
		identify = func(i int, _ T) string { return fmt.Sprintf("Row %d", i+1) }
	}

	res := &Result{Total: len(records), Results: make([]RecordResult, 0, len(records))}
	for i, rec := range records {
		rr := RecordResult{Identifier: identify(i, rec)}
		ref, err := submitOne(ctx, submit, rec)
		if err != nil {
			rr.Message = ErrorMessage(err)
			res.ErrorCount++
			opts.Log.Warn().Str("record", rr.Identifier).Str("error", rr.Message).Msg("record failed")
		} else {
			rr.Success = true
			rr.Ref = ref
			res.SuccessCount++
			opts.Log.Debug().Str("record", rr.Identifier).Str("ref", ref).Msg("record imported")
		}
		res.Results = append(res.Results, rr)
		if opts.OnResult != nil {
			opts.OnResult(i, rec, rr)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(records))
		}
	}
	res.Status = Classify(res.ErrorCount, res.Total)
	return res
}

func submitOne[T any](ctx context.Context, submit SubmitFunc[T], rec T) (ref string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return submit(ctx, rec)
}

// Classify derives a batch status from its error and total counts.
func Classify(errorCount, total int) Status {
	switch {
	case errorCount == 0:
		return StatusSuccess
	case errorCount == total:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// ErrorMessage renders a record failure for the summary.
func ErrorMessage(err error) string {
	if err == nil {
		return "Unknown error"
	}
	var te *platform.TransportError
	if errors.As(err, &te) && te.Empty() {
		return "Unknown error"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}

const (
	partialErrorLimit = 10
	failedErrorLimit  = 20
)

// WriteSummary prints counts and, for unsuccessful batches, a capped list
// of failures. noun is the plural record kind, e.g. "accounts".
func WriteSummary(w io.Writer, res *Result, noun string) {
	switch res.Status {
	case StatusSuccess:
		fmt.Fprintf(w, "Imported %d %s successfully\n", res.SuccessCount, noun)
		return
	case StatusPartial:
		fmt.Fprintf(w, "Imported %d of %d %s (%d failed)\n", res.SuccessCount, res.Total, noun, res.ErrorCount)
	case StatusFailed:
		fmt.Fprintf(w, "Failed to import %s: all %d records failed\n", noun, res.Total)
	}

	limit := partialErrorLimit
	if res.Status == StatusFailed {
		limit = failedErrorLimit
	}
	errs := res.Errors()
	fmt.Fprintln(w, "Errors:")
	for i, rr := range errs {
		if i == limit {
			fmt.Fprintf(w, "  ... and %d more errors\n", len(errs)-limit)
			break
		}
		fmt.Fprintf(w, "  - %s: %s\n", rr.Identifier, rr.Message)
	}
}
