// Package resolve finds the conference record matching a meeting code and
// an approximate time window.
package resolve

import (
	"errors"
	"fmt"
	"time"
)

// DefaultWindow is how far past "after" a conference may start when the
// caller gives no explicit upper bound.
const DefaultWindow = 4 * time.Hour

// ErrEmptyWindow is returned when the window's upper bound precedes its
// lower bound.
var ErrEmptyWindow = errors.New("time window is empty: before precedes after")

// Window is the inclusive [After, Before] interval a conference must start
// in. Both bounds are held in UTC.
type Window struct {
	After  time.Time
	Before time.Time
}

// NewWindow builds a window from the parsed bounds. A zero before defaults
// to after + DefaultWindow.
func NewWindow(after, before time.Time) Window {
	if before.IsZero() {
		before = after.Add(DefaultWindow)
	}
	return Window{After: after.UTC(), Before: before.UTC()}
}

// Validate rejects empty windows. This runs before any remote call.
func (w Window) Validate() error {
	if w.Before.Before(w.After) {
		return fmt.Errorf("%w: after=%s before=%s", ErrEmptyWindow,
			w.After.Format(time.RFC3339), w.Before.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.After) && !t.After(w.Before)
}

// String renders the window for error messages.
func (w Window) String() string {
	return fmt.Sprintf("between %s and %s",
		w.After.Format(time.RFC3339), w.Before.Format(time.RFC3339))
}

// timestampLayouts are the naive formats accepted in addition to RFC 3339.
// Naive timestamps are assumed UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a flexible ISO-8601 timestamp. Timezone-aware
// inputs (Z or offset) keep their zone; naive inputs are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %q", s)
}
