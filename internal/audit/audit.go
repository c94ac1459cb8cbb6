// Package audit records one history entry per query request: who asked,
// what they asked, and how it ended. Recording is best-effort and off the
// request path; a broken audit store never fails a query.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Outcome labels how a request terminated.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeRejected Outcome = "rejected"
	OutcomeTimeout  Outcome = "timeout"
	OutcomeError    Outcome = "error"
)

type Entry struct {
	Subject    string
	SQLText    string
	Outcome    Outcome
	Reason     string
	RowCount   int
	DurationMS float64
	CreatedAt  time.Time
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder is used when no audit store is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

// RecordAsync detaches the write from the request: fire-and-forget with a
// bounded deadline, failures logged only.
func RecordAsync(logger *slog.Logger, recorder Recorder, entry Entry) {
	if recorder == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Record(ctx, entry); err != nil && logger != nil {
			logger.Error("failed to record audit entry", slog.Any("error", err))
		}
	}()
}
