package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/meetfetch/meetfetch/internal/artifact"
	"github.com/meetfetch/meetfetch/internal/engine"
	"github.com/meetfetch/meetfetch/internal/transcript"
)

// payloadKeys are the kind-specific JSON field names for content and
// state.
type payloadKeys struct {
	content string
	state   string
}

func keysFor(kind artifact.Kind) payloadKeys {
	if kind == artifact.KindNotes {
		return payloadKeys{content: "notes", state: "notes_state"}
	}
	return payloadKeys{content: "transcript", state: "transcript_state"}
}

// renderResult writes a successful result. JSON goes to stdout as a
// single object; text mode prints just the content, with speaker labels
// stripped from transcripts unless requested.
func renderResult(stdout io.Writer, kind artifact.Kind, format string, includeSpeakers bool, result *engine.Result) error {
	if format == "text" {
		content := result.Content
		if kind == artifact.KindTranscript && !includeSpeakers {
			content = transcript.StripSpeakerLabels(content)
		}
		_, err := fmt.Fprintln(stdout, content)
		return err
	}

	keys := keysFor(kind)
	payload := map[string]any{
		"found":         true,
		"meeting_code":  result.MeetingCode,
		"conference_id": result.ConferenceID,
		"start_time":    formatTime(result.StartTime),
		"end_time":      formatTime(result.EndTime),
		keys.state:      result.State,
		keys.content:    result.Content,
	}
	if result.DocURL != "" {
		payload["doc_url"] = result.DocURL
	}
	return writeJSON(stdout, payload)
}

// renderError writes a failure. JSON mode emits a found:false object to
// stdout; text mode writes a single line to stderr.
func renderError(stdout, stderr io.Writer, kind artifact.Kind, format string, engineErr *engine.Error) {
	if format == "text" {
		fmt.Fprintf(stderr, "Error: %s\n", engineErr.Message)
		return
	}

	keys := keysFor(kind)
	payload := map[string]any{
		"found":   false,
		"error":   string(engineErr.Kind),
		"message": engineErr.Message,
	}
	if engineErr.MeetingCode != "" {
		payload["meeting_code"] = engineErr.MeetingCode
	}
	if engineErr.ConferenceID != "" {
		payload["conference_id"] = engineErr.ConferenceID
	}
	if engineErr.State != "" {
		payload[keys.state] = engineErr.State
	}
	if engineErr.DocURL != "" {
		payload["doc_url"] = engineErr.DocURL
	}
	if err := writeJSON(stdout, payload); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", engineErr.Message)
	}
}

func writeJSON(w io.Writer, payload map[string]any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
