package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meetfetch/meetfetch/internal/artifact"
	"github.com/meetfetch/meetfetch/internal/googleapi"
	"github.com/meetfetch/meetfetch/internal/logging"
	"github.com/meetfetch/meetfetch/internal/meet"
	"github.com/meetfetch/meetfetch/internal/resolve"
	"github.com/meetfetch/meetfetch/internal/retry"
)

// SessionResolver finds the conference record for a meeting code.
type SessionResolver interface {
	Resolve(ctx context.Context, code string, window resolve.Window) (*resolve.Session, error)
}

// ArtifactLister retrieves artifact metadata for a conference.
type ArtifactLister interface {
	ListTranscripts(ctx context.Context, conferenceID string) ([]meet.Artifact, error)
	ListSmartNotes(ctx context.Context, conferenceID string) ([]meet.Artifact, error)
}

// ContentFetcher retrieves the content of a ready artifact.
type ContentFetcher interface {
	Fetch(ctx context.Context, kind artifact.Kind, ready artifact.Readiness) (string, error)
}

// Request asks for one artifact of one meeting.
type Request struct {
	MeetingCode string
	Kind        artifact.Kind
	Window      resolve.Window
}

// Result is the successful outcome of a Request.
type Result struct {
	MeetingCode  string
	ConferenceID string
	StartTime    *time.Time
	EndTime      *time.Time
	State        string
	DocURL       string
	Content      string
}

// Engine runs the resolve, assess, fetch pipeline for one artifact
// request. Every failure comes back as an *Error carrying a
// machine-readable kind plus whatever context was resolved before the
// failure.
type Engine struct {
	resolver SessionResolver
	lister   ArtifactLister
	fetcher  ContentFetcher
	exec     *retry.Executor
	logger   *logging.Logger
}

// New creates an Engine. A nil logger disables logging.
func New(resolver SessionResolver, lister ArtifactLister, fetcher ContentFetcher, exec *retry.Executor, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{resolver: resolver, lister: lister, fetcher: fetcher, exec: exec, logger: logger}
}

// NormalizeMeetingCode accepts either a bare meeting code or a full
// meet.google.com URL and returns the bare code.
func NormalizeMeetingCode(raw string) string {
	code := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://meet.google.com/", "http://meet.google.com/", "meet.google.com/"} {
		if rest, ok := strings.CutPrefix(code, prefix); ok {
			code = rest
			break
		}
	}
	return strings.TrimSuffix(code, "/")
}

// Get resolves the meeting, assesses the requested artifact, and fetches
// its content. On failure the returned error is always an *Error.
func (e *Engine) Get(ctx context.Context, req Request) (*Result, error) {
	code := NormalizeMeetingCode(req.MeetingCode)
	if code == "" {
		return nil, &Error{Kind: KindInvalidInput, Message: "meeting code is required"}
	}
	if req.Kind != artifact.KindTranscript && req.Kind != artifact.KindNotes {
		return nil, &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("unknown artifact kind %q", req.Kind)}
	}
	if err := req.Window.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalidInput, Message: err.Error(), MeetingCode: code, err: err}
	}

	ctx = logging.WithMeetingCode(ctx, code)
	e.logger.Info(ctx, "resolving meeting session",
		zap.String("kind", req.Kind.String()),
		zap.String("window", req.Window.String()),
	)

	session, err := e.resolver.Resolve(ctx, code, req.Window)
	if err != nil {
		return nil, e.classifyRemote(err, code, "", "looking up conference records")
	}
	if session == nil {
		return nil, &Error{
			Kind:        KindSessionNotFound,
			Message:     fmt.Sprintf("no meeting found for code %q in window %s", code, req.Window),
			MeetingCode: code,
		}
	}

	ctx = logging.WithConferenceID(ctx, session.ID)
	e.logger.Info(ctx, "conference resolved, checking artifact")

	artifacts, err := e.listArtifacts(ctx, req.Kind, session.ID)
	if err != nil {
		return nil, e.classifyArtifactList(err, req.Kind, code, session.ID)
	}

	ready := artifact.Assess(req.Kind, artifacts)
	switch ready.Verdict {
	case artifact.VerdictAbsent:
		return nil, &Error{
			Kind:         KindArtifactAbsent,
			Message:      ready.Message,
			MeetingCode:  code,
			ConferenceID: session.ID,
		}
	case artifact.VerdictInProgress, artifact.VerdictProcessing:
		return nil, &Error{
			Kind:         KindArtifactNotReady,
			Message:      ready.Message,
			MeetingCode:  code,
			ConferenceID: session.ID,
			State:        ready.State,
		}
	case artifact.VerdictMalformedReady:
		return nil, &Error{
			Kind:         KindContentFetchError,
			Message:      ready.Message,
			MeetingCode:  code,
			ConferenceID: session.ID,
			State:        ready.State,
		}
	}

	content, err := e.fetcher.Fetch(ctx, req.Kind, ready)
	if err != nil {
		return nil, e.classifyFetch(err, req.Kind, code, session.ID, ready)
	}

	e.logger.Info(ctx, "artifact content retrieved",
		zap.String("kind", req.Kind.String()),
		zap.Int("bytes", len(content)),
	)
	return &Result{
		MeetingCode:  code,
		ConferenceID: session.ID,
		StartTime:    session.StartTime,
		EndTime:      session.EndTime,
		State:        ready.State,
		DocURL:       ready.Export.URL,
		Content:      content,
	}, nil
}

func (e *Engine) listArtifacts(ctx context.Context, kind artifact.Kind, conferenceID string) ([]meet.Artifact, error) {
	var artifacts []meet.Artifact
	err := e.exec.Do(ctx, "list "+kind.String()+" artifacts", func() error {
		var listErr error
		switch kind {
		case artifact.KindNotes:
			artifacts, listErr = e.lister.ListSmartNotes(ctx, conferenceID)
		default:
			artifacts, listErr = e.lister.ListTranscripts(ctx, conferenceID)
		}
		return listErr
	})
	return artifacts, err
}

// classifyRemote maps a session-resolution failure to an error kind.
func (e *Engine) classifyRemote(err error, code, conferenceID, doing string) *Error {
	result := &Error{MeetingCode: code, ConferenceID: conferenceID, err: err}
	switch {
	case errors.Is(err, resolve.ErrEmptyWindow):
		result.Kind = KindInvalidInput
		result.Message = err.Error()
	case googleapi.IsPermissionDenied(err):
		result.Kind = KindAccessDenied
		result.Message = fmt.Sprintf("access denied while %s: %v", doing, err)
	default:
		result.Kind = KindUpstreamError
		result.Message = fmt.Sprintf("remote failure while %s: %v", doing, err)
	}
	return result
}

// classifyArtifactList maps an artifact metadata failure to an error
// kind. A missing endpoint means the artifact type itself is not
// available on this account, which is distinct from a missing artifact.
func (e *Engine) classifyArtifactList(err error, kind artifact.Kind, code, conferenceID string) *Error {
	result := &Error{MeetingCode: code, ConferenceID: conferenceID, err: err}
	switch {
	case googleapi.IsMethodNotFound(err):
		result.Kind = KindFeatureUnavailable
		result.Message = fmt.Sprintf("%s are not available for this account", kind)
	case googleapi.IsNotFound(err):
		result.Kind = KindArtifactAbsent
		result.Message = fmt.Sprintf("conference found but no %s exists for it", kind)
	case googleapi.IsPermissionDenied(err):
		result.Kind = KindAccessDenied
		result.Message = fmt.Sprintf("access denied while listing %s artifacts: %v", kind, err)
	default:
		result.Kind = KindUpstreamError
		result.Message = fmt.Sprintf("remote failure while listing %s artifacts: %v", kind, err)
	}
	return result
}

func (e *Engine) classifyFetch(err error, kind artifact.Kind, code, conferenceID string, ready artifact.Readiness) *Error {
	result := &Error{
		MeetingCode:  code,
		ConferenceID: conferenceID,
		State:        ready.State,
		DocURL:       ready.Export.URL,
		err:          err,
	}
	switch {
	case errors.Is(err, artifact.ErrContentEmpty):
		result.Kind = KindContentEmpty
		result.Message = fmt.Sprintf("%s exists but contains no content", kind)
	case googleapi.IsPermissionDenied(err):
		result.Kind = KindAccessDenied
		result.Message = fmt.Sprintf("access denied while fetching %s content: %v", kind, err)
	default:
		result.Kind = KindContentFetchError
		result.Message = fmt.Sprintf("failed to fetch %s content: %v", kind, err)
	}
	return result
}
