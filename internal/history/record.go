package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

var ErrUnknownBackend = errors.New("unknown history backend")

// Record is one completed workout. Records are append-only.
type Record struct {
	ID              string         `json:"id"`
	Date            time.Time      `json:"date"`
	Session         plan.SessionID `json:"session"`
	DurationMinutes int            `json:"durationMinutes"`
	PersonalBest    bool           `json:"personalBest"`
}

// NewRecord builds the record for a workout started at startedAt and ended at now
func NewRecord(session plan.SessionID, startedAt, now time.Time) Record {
	return Record{
		ID:              uuid.NewString(),
		Date:            now.UTC(),
		Session:         session,
		DurationMinutes: interval.DurationMinutes(startedAt, now),
		PersonalBest:    false,
	}
}

// Store persists workout records. List returns newest first.
type Store interface {
	Append(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Backend names a Store implementation
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
)

// Open creates the store for backend at path
func Open(ctx context.Context, backend Backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite:
		return NewSQLiteStore(ctx, path)
	case BackendJSON:
		return NewJSONStore(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Summary holds the achievement totals over a history
type Summary struct {
	TotalWorkouts int
	TotalMinutes  int
	PersonalBests int
}

// Summarize computes totals over records
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		s.TotalWorkouts++
		s.TotalMinutes += r.DurationMinutes
		if r.PersonalBest {
			s.PersonalBests++
		}
	}
	return s
}
