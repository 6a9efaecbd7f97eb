package logging

import (
	"context"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
//
// A resolution run stashes the meeting code and, once resolved, the
// conference id into the context so every downstream log line (retries
// included) carries them.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)

	if code := MeetingCodeFromContext(ctx); code != "" {
		fields = append(fields, zap.String("meeting_code", code))
	}
	if id := ConferenceIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("conference_id", id))
	}

	return fields
}

// Context key types
type meetingCodeCtxKey struct{}
type conferenceIDCtxKey struct{}

// WithMeetingCode adds the meeting code to context.
func WithMeetingCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, meetingCodeCtxKey{}, code)
}

// MeetingCodeFromContext extracts the meeting code from context.
func MeetingCodeFromContext(ctx context.Context) string {
	if c, ok := ctx.Value(meetingCodeCtxKey{}).(string); ok {
		return c
	}
	return ""
}

// WithConferenceID adds the resolved conference id to context.
func WithConferenceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conferenceIDCtxKey{}, id)
}

// ConferenceIDFromContext extracts the conference id from context.
func ConferenceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(conferenceIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}
