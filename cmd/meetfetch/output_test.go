package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetfetch/meetfetch/internal/artifact"
	"github.com/meetfetch/meetfetch/internal/auth"
	"github.com/meetfetch/meetfetch/internal/engine"
	"github.com/meetfetch/meetfetch/internal/resolve"
)

func sampleResult() *engine.Result {
	start := time.Date(2024, 1, 15, 14, 3, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	return &engine.Result{
		MeetingCode:  "abc-defg-hij",
		ConferenceID: "conf-1",
		StartTime:    &start,
		EndTime:      &end,
		State:        "FILE_GENERATED",
		DocURL:       "https://docs.google.com/document/d/doc-1/edit",
		Content:      "Speaker 1: hello\nJohn Smith: world",
	}
}

func TestRenderResult_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResult(&out, artifact.KindTranscript, "json", false, sampleResult()))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	assert.Equal(t, true, payload["found"])
	assert.Equal(t, "abc-defg-hij", payload["meeting_code"])
	assert.Equal(t, "conf-1", payload["conference_id"])
	assert.Equal(t, "2024-01-15T14:03:00Z", payload["start_time"])
	assert.Equal(t, "2024-01-15T14:48:00Z", payload["end_time"])
	assert.Equal(t, "FILE_GENERATED", payload["transcript_state"])
	assert.Equal(t, "Speaker 1: hello\nJohn Smith: world", payload["transcript"])
	assert.Equal(t, "https://docs.google.com/document/d/doc-1/edit", payload["doc_url"])
}

func TestRenderResult_JSONNotesKeys(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResult(&out, artifact.KindNotes, "json", false, sampleResult()))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	assert.Contains(t, payload, "notes")
	assert.Contains(t, payload, "notes_state")
	assert.NotContains(t, payload, "transcript")
}

func TestRenderResult_TextStripsSpeakers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResult(&out, artifact.KindTranscript, "text", false, sampleResult()))
	assert.Equal(t, "hello\nworld\n", out.String())
}

func TestRenderResult_TextIncludeSpeakers(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderResult(&out, artifact.KindTranscript, "text", true, sampleResult()))
	assert.Equal(t, "Speaker 1: hello\nJohn Smith: world\n", out.String())
}

func TestRenderResult_TextNotesKeepsContentVerbatim(t *testing.T) {
	result := sampleResult()
	result.Content = "Summary: decisions were made"
	var out bytes.Buffer
	require.NoError(t, renderResult(&out, artifact.KindNotes, "text", false, result))
	assert.Equal(t, "Summary: decisions were made\n", out.String())
}

func TestRenderError_JSON(t *testing.T) {
	var out, errOut bytes.Buffer
	renderError(&out, &errOut, artifact.KindTranscript, "json", &engine.Error{
		Kind:         engine.KindArtifactNotReady,
		Message:      "transcript is still processing (state: ENDED); try again in a few minutes",
		MeetingCode:  "abc-defg-hij",
		ConferenceID: "conf-1",
		State:        "ENDED",
	})

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	assert.Equal(t, false, payload["found"])
	assert.Equal(t, "artifact_not_ready", payload["error"])
	assert.Equal(t, "conf-1", payload["conference_id"])
	assert.Equal(t, "ENDED", payload["transcript_state"])
	assert.Empty(t, errOut.String(), "json errors go to stdout only")
}

func TestRenderError_JSONOmitsUnresolvedContext(t *testing.T) {
	var out, errOut bytes.Buffer
	renderError(&out, &errOut, artifact.KindNotes, "json", &engine.Error{
		Kind:    engine.KindInvalidInput,
		Message: "meeting code is required",
	})

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	assert.NotContains(t, payload, "conference_id")
	assert.NotContains(t, payload, "notes_state")
	assert.NotContains(t, payload, "doc_url")
}

func TestRenderError_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	renderError(&out, &errOut, artifact.KindTranscript, "text", &engine.Error{
		Kind:    engine.KindSessionNotFound,
		Message: "no meeting found",
	})

	assert.Empty(t, out.String(), "text errors never pollute stdout")
	assert.Equal(t, "Error: no meeting found\n", errOut.String())
}

func TestParseWindow(t *testing.T) {
	window, err := parseWindow("2024-01-15T14:00:00", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC), window.After)
	assert.Equal(t, window.After.Add(resolve.DefaultWindow), window.Before)

	window, err = parseWindow("2024-01-15T14:00:00", "2024-01-15T16:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 16, 0, 0, 0, time.UTC), window.Before)

	_, err = parseWindow("not-a-time", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--after")

	_, err = parseWindow("2024-01-15T14:00:00", "also-bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--before")

	_, err = parseWindow("2024-01-15T14:00:00", "2024-01-15T12:00:00")
	require.Error(t, err)
	assert.ErrorIs(t, err, resolve.ErrEmptyWindow)
}

func TestClassifyAuthError(t *testing.T) {
	assert.Equal(t, engine.KindAuthConfigMissing, classifyAuthError(auth.ErrConfigMissing).Kind)
	assert.Equal(t, engine.KindAuthConfigMissing, classifyAuthError(auth.ErrNotAuthorized).Kind)
	assert.Equal(t, engine.KindAuthRefreshFailed, classifyAuthError(auth.ErrRefreshFailed).Kind)
	assert.Equal(t, engine.KindUpstreamError, classifyAuthError(assert.AnError).Kind)
}
