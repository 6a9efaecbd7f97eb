package meet

import (
	"strings"
	"time"
)

// Artifact generation states reported by the Meet API.
const (
	// StateStarted means generation is in progress; the meeting is likely
	// still live.
	StateStarted = "STARTED"

	// StateEnded means the meeting ended and the artifact is queued or
	// processing but has not materialized yet.
	StateEnded = "ENDED"

	// StateFileGenerated is the terminal success state: the artifact has
	// been written to a document.
	StateFileGenerated = "FILE_GENERATED"
)

// ConferenceRecord is one instance of a meeting occurring in time.
type ConferenceRecord struct {
	// Name is the resource name, conferenceRecords/{id}.
	Name string `json:"name"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// ID returns the bare conference id from the resource name.
func (r ConferenceRecord) ID() string {
	if i := strings.LastIndex(r.Name, "/"); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// DocsDestination points at the document holding generated content.
type DocsDestination struct {
	// Document is the document id.
	Document string `json:"document"`

	// ExportURI is a browser link to the document, when provided.
	ExportURI string `json:"exportUri"`
}

// Artifact is the generation metadata for a transcript or smart-notes
// document attached to a conference record.
type Artifact struct {
	// Name is the resource name, e.g. conferenceRecords/{c}/transcripts/{t}.
	Name string `json:"name"`

	// State is one of the State* constants, or an unknown value for states
	// this client does not know about yet.
	State string `json:"state"`

	DocsDestination *DocsDestination `json:"docsDestination,omitempty"`
}

// TranscriptEntry is a single utterance fragment of a transcript.
type TranscriptEntry struct {
	// Participant is the resource name or display label of the speaker.
	// May be empty.
	Participant string `json:"participant"`

	Text string `json:"text"`
}
