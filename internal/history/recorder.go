package history

import (
	"context"
	"log"
)

// Recorder wraps a Store for the UI: failures are logged and swallowed.
// A failed List reads as an empty history and a failed Append loses the record.
type Recorder struct {
	store  Store
	logger *log.Logger
}

// NewRecorder creates a Recorder over store
func NewRecorder(store Store, logger *log.Logger) *Recorder {
	if store == nil {
		panic("Recorder: store cannot be nil")
	}
	if logger == nil {
		panic("Recorder: logger cannot be nil")
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends record and reports whether it was stored
func (r *Recorder) Record(ctx context.Context, record Record) bool {
	if err := r.store.Append(ctx, record); err != nil {
		r.logger.Printf("Recorder: Failed to save workout %s: %v", record.ID, err)
		return false
	}
	r.logger.Printf("Recorder: Workout %s saved (session %d, %d min)", record.ID, record.Session, record.DurationMinutes)
	return true
}

// History returns all records newest first, or an empty list on failure
func (r *Recorder) History(ctx context.Context) []Record {
	records, err := r.store.List(ctx)
	if err != nil {
		r.logger.Printf("Recorder: Failed to load workout history: %v", err)
		return []Record{}
	}
	return records
}
