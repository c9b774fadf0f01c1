package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// JobLogHandler is a slog.Handler that captures records in the job store so
// a job's progress can be polled over the API.
type JobLogHandler struct {
	service *Service
	jobID   uuid.UUID
}

func NewJobLogHandler(s *Service, jobID uuid.UUID) *JobLogHandler {
	return &JobLogHandler{service: s, jobID: jobID}
}

func (h *JobLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // capture everything
}

func (h *JobLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Extract attributes to JSON
	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	metaJSON, err := json.Marshal(attrs)
	if err != nil {
		// Fallback for marshal error
		metaJSON = []byte("{}")
	}

	h.service.appendLog(h.jobID, LogEntry{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
		Metadata:  metaJSON,
	})
	return nil
}

func (h *JobLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Attribute chaining is not needed for per-job capture; records keep
	// their inline attributes.
	return h
}

func (h *JobLogHandler) WithGroup(name string) slog.Handler {
	return h
}
