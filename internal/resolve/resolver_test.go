package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetfetch/meetfetch/internal/googleapi"
	"github.com/meetfetch/meetfetch/internal/meet"
	"github.com/meetfetch/meetfetch/internal/retry"
)

type fakeLister struct {
	records    []meet.ConferenceRecord
	err        error
	seenFilter string
	calls      int
}

func (f *fakeLister) ListConferenceRecords(ctx context.Context, filter string) ([]meet.ConferenceRecord, error) {
	f.calls++
	f.seenFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func fastExecutor() *retry.Executor {
	return retry.New(retry.Config{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, nil)
}

func record(id string, start time.Time) meet.ConferenceRecord {
	return meet.ConferenceRecord{Name: "conferenceRecords/" + id, StartTime: &start}
}

func TestMeetingCodeFilter(t *testing.T) {
	// Spaces around = are part of the API's filter grammar.
	assert.Equal(t, `space.meeting_code = "abc-defg-hij"`, MeetingCodeFilter("abc-defg-hij"))
}

func TestResolve_RejectsEmptyWindowBeforeAnyCall(t *testing.T) {
	lister := &fakeLister{}
	r := NewResolver(lister, fastExecutor(), nil)

	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	_, err := r.Resolve(context.Background(), "abc", Window{After: after, Before: after.Add(-time.Hour)})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyWindow)
	assert.Equal(t, 0, lister.calls, "no remote call for an empty window")
}

func TestResolve_NoRecords(t *testing.T) {
	lister := &fakeLister{}
	r := NewResolver(lister, fastExecutor(), nil)

	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	session, err := r.Resolve(context.Background(), "abc-defg-hij", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, `space.meeting_code = "abc-defg-hij"`, lister.seenFilter)
}

func TestResolve_NotFoundIsNoMatch(t *testing.T) {
	lister := &fakeLister{err: &googleapi.Error{StatusCode: 404, Message: "no such space"}}
	r := NewResolver(lister, fastExecutor(), nil)

	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	session, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestResolve_PermissionDeniedPropagates(t *testing.T) {
	lister := &fakeLister{err: &googleapi.Error{StatusCode: 403, Message: "nope"}}
	r := NewResolver(lister, fastExecutor(), nil)

	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	_, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.Error(t, err)
	assert.True(t, googleapi.IsPermissionDenied(err))
	assert.Equal(t, 1, lister.calls, "permission denial is fatal, not retried")
}

func TestResolve_ExcludesRecordsOutsideWindow(t *testing.T) {
	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	lister := &fakeLister{records: []meet.ConferenceRecord{
		record("early", after.Add(-time.Minute)),
		record("late", after.Add(5*time.Hour)),
		{Name: "conferenceRecords/no-start"},
	}}
	r := NewResolver(lister, fastExecutor(), nil)

	session, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	assert.Nil(t, session, "records outside the window never match, regardless of code")
}

func TestResolve_PicksClosestToAfter(t *testing.T) {
	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	lister := &fakeLister{records: []meet.ConferenceRecord{
		record("far", after.Add(3*time.Hour)),
		record("near", after.Add(30*time.Minute)),
		record("nearer", after.Add(10*time.Minute)),
	}}
	r := NewResolver(lister, fastExecutor(), nil)

	session, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "nearer", session.ID)
	assert.Equal(t, "conferenceRecords/nearer", session.Name)
}

func TestResolve_TieKeepsOriginalOrder(t *testing.T) {
	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	// Both records start exactly one hour from "after".
	lister := &fakeLister{records: []meet.ConferenceRecord{
		record("first", after.Add(time.Hour)),
		record("second", after.Add(time.Hour)),
	}}
	r := NewResolver(lister, fastExecutor(), nil)

	session, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "first", session.ID, "exact tie keeps the API's ordering")
}

func TestResolve_NormalizesRecordTimezone(t *testing.T) {
	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	// 15:30 UTC expressed as 17:30 +02:00 still lands in the window.
	inZone := time.Date(2024, 1, 15, 17, 30, 0, 0, time.FixedZone("EET", 2*3600))
	lister := &fakeLister{records: []meet.ConferenceRecord{record("zoned", inZone)}}
	r := NewResolver(lister, fastExecutor(), nil)

	session, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "zoned", session.ID)
}

func TestResolve_RetriesTransientListFailures(t *testing.T) {
	after := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	lister := &flakyLister{
		failures: 1,
		err:      &googleapi.Error{StatusCode: 503, Message: "unavailable"},
		records:  []meet.ConferenceRecord{record("ok", after.Add(time.Minute))},
	}
	r := NewResolver(lister, fastExecutor(), nil)

	session, err := r.Resolve(context.Background(), "abc", NewWindow(after, time.Time{}))

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "ok", session.ID)
	assert.Equal(t, 2, lister.calls)
}

type flakyLister struct {
	failures int
	err      error
	records  []meet.ConferenceRecord
	calls    int
}

func (f *flakyLister) ListConferenceRecords(ctx context.Context, filter string) ([]meet.ConferenceRecord, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.records, nil
}
