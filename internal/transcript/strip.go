package transcript

import (
	"regexp"
	"strings"
)

// speakerLabelPattern matches a leading speaker label followed by a colon:
// either a literal "Speaker N", or a capitalized name of one to three words
// with an optional middle initial ("John", "John Smith", "John Q. Smith").
//
// This is a heuristic text filter, not a parser: names outside the assumed
// shape will be under- or over-stripped, and widening the pattern trades
// one failure mode for the other.
var speakerLabelPattern = regexp.MustCompile(
	`^(?:Speaker\s+\d+|[A-Z][a-zA-Z]*(?:\s+[A-Z]\.?)?(?:\s+[A-Z][a-zA-Z]*)?):\s*`,
)

// StripSpeakerLabels removes the leading speaker label from each line.
// Lines are processed independently and rejoined with newlines; at most
// one label is removed per line, and lines without a matching prefix pass
// through unchanged.
func StripSpeakerLabels(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = speakerLabelPattern.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}
