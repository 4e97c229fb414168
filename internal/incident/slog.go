package incident

import (
	"context"
	"log/slog"
)

// LogWriter emits incidents as structured log lines. It is the default
// sink when no database or stream is configured.
type LogWriter struct {
	logger *slog.Logger
}

func NewLogWriter(logger *slog.Logger) *LogWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogWriter{logger: logger}
}

func (w *LogWriter) WriteBatch(ctx context.Context, records []Record) error {
	for _, r := range records {
		attrs := []any{
			"incident_id", r.ID,
			"category", r.Category,
			"severity", r.Severity,
			"outcome", r.Outcome,
			"input_digest", r.InputDigest,
			"confidence", r.Confidence,
			"detail", r.Detail,
		}
		if r.UserID != nil {
			attrs = append(attrs, "user_id", *r.UserID)
		}
		w.logger.WarnContext(ctx, "sentinel incident", attrs...)
	}
	return nil
}
