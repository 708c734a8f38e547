package service

import (
	"context"
	"log"

	"github.com/cloo-solutions/aula/internal/domain"
	"github.com/cloo-solutions/aula/internal/telemetry"
)

// InteractionSink appends one interaction and returns its id.
type InteractionSink interface {
	Record(ctx context.Context, i *domain.Interaction) (string, error)
}

// Recorder logs interactions without ever failing the caller.
type Recorder struct {
	sink InteractionSink
}

// NewRecorder creates a Recorder. A nil sink disables recording.
func NewRecorder(sink InteractionSink) *Recorder {
	return &Recorder{sink: sink}
}

// Record stores i and returns the new id, or "" when the interaction was
// invalid or the sink failed. Failures are logged and reported.
func (r *Recorder) Record(ctx context.Context, i *domain.Interaction) string {
	if r == nil || r.sink == nil {
		return ""
	}

	if err := domain.ValidateInteraction(i); err != nil {
		log.Printf("recorder: skipping invalid interaction: %v", err)
		return ""
	}

	id, err := r.sink.Record(ctx, i)
	if err != nil {
		log.Printf("recorder: failed to record interaction for student %s: %v", i.StudentID, err)
		telemetry.CaptureError(ctx, domain.StorageError("failed to record interaction", err))
		return ""
	}
	return id
}
