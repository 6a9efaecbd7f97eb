package engine

import "fmt"

// ErrorKind classifies a failed artifact request into one of a fixed set
// of machine-readable outcomes. Callers branch on the kind; the message
// is for humans.
type ErrorKind string

const (
	// KindInvalidInput covers malformed requests rejected before any
	// remote call is made.
	KindInvalidInput ErrorKind = "invalid_input"

	// KindAuthConfigMissing means the OAuth client secrets could not be
	// loaded.
	KindAuthConfigMissing ErrorKind = "auth_config_missing"

	// KindAuthRefreshFailed means a stored credential exists but could
	// not be refreshed.
	KindAuthRefreshFailed ErrorKind = "auth_refresh_failed"

	// KindAccessDenied means the authenticated user lacks permission
	// for the session or its documents.
	KindAccessDenied ErrorKind = "access_denied"

	// KindUpstreamError covers remote failures that are neither a
	// not-found nor a permission problem.
	KindUpstreamError ErrorKind = "upstream_error"

	// KindSessionNotFound means no conference record matched the
	// meeting code within the requested window.
	KindSessionNotFound ErrorKind = "session_not_found"

	// KindArtifactAbsent means the session exists but never produced
	// the requested artifact.
	KindArtifactAbsent ErrorKind = "artifact_absent"

	// KindArtifactNotReady means the artifact exists but its document
	// has not been generated yet.
	KindArtifactNotReady ErrorKind = "artifact_not_ready"

	// KindFeatureUnavailable means the artifact type is not enabled for
	// this account (the endpoint itself is missing).
	KindFeatureUnavailable ErrorKind = "feature_unavailable"

	// KindContentEmpty means a ready artifact resolved to no text.
	KindContentEmpty ErrorKind = "content_empty"

	// KindContentFetchError means the artifact is ready but its content
	// could not be retrieved.
	KindContentFetchError ErrorKind = "content_fetch_error"
)

// Error is the failure result of an artifact request. It carries as much
// resolved context as the pipeline produced before failing, so a caller
// can still report which session was involved.
type Error struct {
	Kind         ErrorKind
	Message      string
	MeetingCode  string
	ConferenceID string
	State        string
	DocURL       string

	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }
