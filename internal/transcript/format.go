// Package transcript reassembles raw transcript entries into readable text
// and post-processes transcript text for plain-text consumption.
package transcript

import (
	"fmt"
	"strings"
)

// UnknownSpeaker is the label attributed to entries with no participant.
const UnknownSpeaker = "Unknown"

// Entry is one utterance fragment in emission order.
type Entry struct {
	// Speaker is the participant label. Empty means unknown.
	Speaker string

	Text string
}

// FormatEntries reconstructs readable text from ordered entries.
// Consecutive entries from the same speaker merge into one paragraph of
// the form "Speaker: text text text"; paragraphs are separated by a blank
// line.
func FormatEntries(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var paragraphs []string
	currentSpeaker := ""
	var currentText []string

	flush := func() {
		if len(currentText) > 0 {
			paragraphs = append(paragraphs, fmt.Sprintf("%s: %s", currentSpeaker, strings.Join(currentText, " ")))
		}
	}

	for _, entry := range entries {
		speaker := entry.Speaker
		if speaker == "" {
			speaker = UnknownSpeaker
		}

		if speaker != currentSpeaker {
			flush()
			currentSpeaker = speaker
			currentText = currentText[:0]
		}
		currentText = append(currentText, entry.Text)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
