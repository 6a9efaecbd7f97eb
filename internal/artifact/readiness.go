// Package artifact interprets artifact generation states and retrieves
// ready artifact content.
package artifact

import (
	"fmt"

	"github.com/meetfetch/meetfetch/internal/meet"
)

// Kind selects which generated artifact to fetch.
type Kind string

const (
	KindTranscript Kind = "transcript"
	KindNotes      Kind = "notes"
)

// String returns the kind name used in messages and payloads.
func (k Kind) String() string { return string(k) }

// AllowsFallback reports whether the kind supports reconstruction from raw
// entries when the document export is unavailable. Only transcripts have a
// raw-entry representation.
func (k Kind) AllowsFallback() bool { return k == KindTranscript }

// Verdict is the engine's interpretation of an artifact's generation state.
type Verdict int

const (
	// VerdictReady means the artifact materialized and carries a usable
	// export reference.
	VerdictReady Verdict = iota

	// VerdictInProgress means generation is running; the meeting may still
	// be live.
	VerdictInProgress

	// VerdictProcessing means the meeting ended but the artifact has not
	// materialized yet.
	VerdictProcessing

	// VerdictAbsent means no artifact exists at all: the feature was never
	// enabled for this conference.
	VerdictAbsent

	// VerdictMalformedReady means the state reports success but the export
	// reference is structurally incomplete (no document id).
	VerdictMalformedReady
)

// ExportRef points at the document holding the generated content.
type ExportRef struct {
	DocumentID string
	URL        string
}

// Readiness is the outcome of assessing artifact metadata.
type Readiness struct {
	Verdict Verdict

	// State is the literal remote state observed, for diagnostics.
	State string

	// Message is a human-readable explanation for non-ready verdicts.
	Message string

	// ArtifactName is the resource name of the assessed artifact, empty
	// for VerdictAbsent.
	ArtifactName string

	// Export is set for VerdictReady.
	Export ExportRef
}

// Assess maps observed artifact metadata to a verdict. The engine polls
// once per invocation; transitions are observed, never driven. If the API
// returns more than one artifact the first is taken; additional entries
// are unexpected but non-fatal.
func Assess(kind Kind, artifacts []meet.Artifact) Readiness {
	if len(artifacts) == 0 {
		return Readiness{
			Verdict: VerdictAbsent,
			Message: fmt.Sprintf("conference found but %s was not enabled for this meeting", kind),
		}
	}

	a := artifacts[0]

	switch a.State {
	case meet.StateStarted:
		return Readiness{
			Verdict:      VerdictInProgress,
			State:        a.State,
			ArtifactName: a.Name,
			Message:      fmt.Sprintf("%s is still being generated (state: %s); the meeting may still be in progress", kind, a.State),
		}
	case meet.StateEnded:
		return Readiness{
			Verdict:      VerdictProcessing,
			State:        a.State,
			ArtifactName: a.Name,
			Message:      fmt.Sprintf("%s is still processing (state: %s); try again in a few minutes", kind, a.State),
		}
	case meet.StateFileGenerated:
		if a.DocsDestination == nil || a.DocsDestination.Document == "" {
			return Readiness{
				Verdict:      VerdictMalformedReady,
				State:        a.State,
				ArtifactName: a.Name,
				Message:      fmt.Sprintf("%s state is %s but no document id was provided", kind, a.State),
			}
		}
		return Readiness{
			Verdict:      VerdictReady,
			State:        a.State,
			ArtifactName: a.Name,
			Export: ExportRef{
				DocumentID: a.DocsDestination.Document,
				URL:        exportURL(a.DocsDestination),
			},
		}
	default:
		// Unknown states read as not-ready; the literal state name is kept
		// for diagnosability.
		return Readiness{
			Verdict:      VerdictProcessing,
			State:        a.State,
			ArtifactName: a.Name,
			Message:      fmt.Sprintf("%s is not ready (state: %s); try again in a few minutes", kind, a.State),
		}
	}
}

// exportURL prefers the API-provided link and falls back to the canonical
// document URL.
func exportURL(dest *meet.DocsDestination) string {
	if dest.ExportURI != "" {
		return dest.ExportURI
	}
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", dest.Document)
}
