package resolve

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meetfetch/meetfetch/internal/googleapi"
	"github.com/meetfetch/meetfetch/internal/logging"
	"github.com/meetfetch/meetfetch/internal/meet"
	"github.com/meetfetch/meetfetch/internal/retry"
)

// Session is the resolved conference reference consumed by downstream
// stages. Immutable once resolved.
type Session struct {
	// ID is the bare conference id.
	ID string

	// Name is the full resource name, conferenceRecords/{id}.
	Name string

	StartTime *time.Time
	EndTime   *time.Time
}

// MeetingCodeFilter builds the list filter for a meeting code. The API's
// filter grammar requires spaces around the equality operator; the unspaced
// form is rejected.
func MeetingCodeFilter(code string) string {
	return fmt.Sprintf(`space.meeting_code = %q`, code)
}

// RecordLister is the slice of the Meet API the resolver needs.
type RecordLister interface {
	ListConferenceRecords(ctx context.Context, filter string) ([]meet.ConferenceRecord, error)
}

// Resolver finds the conference record for a meeting code + window.
type Resolver struct {
	lister RecordLister
	exec   *retry.Executor
	logger *logging.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(lister RecordLister, exec *retry.Executor, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{lister: lister, exec: exec, logger: logger}
}

// Resolve queries conference records by meeting code and picks the one
// whose start time falls inside the window and lies closest to the
// window's lower bound. Ties keep the API's original ordering. A nil
// Session with nil error means no conference matched; permission and other
// remote failures are returned as-is for the caller to classify.
func (r *Resolver) Resolve(ctx context.Context, code string, window Window) (*Session, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	filter := MeetingCodeFilter(code)

	var records []meet.ConferenceRecord
	err := r.exec.Do(ctx, "list conference records", func() error {
		var listErr error
		records, listErr = r.lister.ListConferenceRecords(ctx, filter)
		return listErr
	})
	if err != nil {
		if googleapi.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}

	best := -1
	var bestDistance time.Duration
	for i, record := range records {
		if record.StartTime == nil {
			continue
		}
		start := record.StartTime.UTC()
		if !window.Contains(start) {
			continue
		}

		distance := start.Sub(window.After)
		if distance < 0 {
			distance = -distance
		}
		// Strict comparison keeps the first occurrence on exact ties.
		if best == -1 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}

	if best == -1 {
		r.logger.Debug(ctx, "conference records found but none inside window",
			zap.Int("records", len(records)),
			zap.String("window", window.String()),
		)
		return nil, nil
	}

	record := records[best]
	return &Session{
		ID:        record.ID(),
		Name:      record.Name,
		StartTime: record.StartTime,
		EndTime:   record.EndTime,
	}, nil
}
