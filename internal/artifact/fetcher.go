package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meetfetch/meetfetch/internal/googleapi"
	"github.com/meetfetch/meetfetch/internal/logging"
	"github.com/meetfetch/meetfetch/internal/meet"
	"github.com/meetfetch/meetfetch/internal/retry"
	"github.com/meetfetch/meetfetch/internal/transcript"
)

// ErrContentEmpty is returned when an artifact reported ready yields no
// content at all.
var ErrContentEmpty = errors.New("artifact exists but contains no content")

// Exporter is the document-export capability (Drive).
type Exporter interface {
	ExportPlainText(ctx context.Context, documentID string) (string, error)
}

// EntryLister fetches one page of raw transcript entries.
type EntryLister interface {
	ListTranscriptEntries(ctx context.Context, transcriptName, pageToken string) ([]meet.TranscriptEntry, string, error)
}

// Fetcher retrieves the content of a ready artifact: preferred formatted
// export first, raw-entry reconstruction as the transcript-only fallback.
type Fetcher struct {
	exporter Exporter
	entries  EntryLister
	exec     *retry.Executor
	logger   *logging.Logger
}

// NewFetcher creates a Fetcher. A nil logger disables logging.
func NewFetcher(exporter Exporter, entries EntryLister, exec *retry.Executor, logger *logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{exporter: exporter, entries: entries, exec: exec, logger: logger}
}

// Fetch returns the content for a VerdictReady readiness.
//
// A permission denial on the export is terminal for both kinds: lacking
// read access to the primary document makes the fallback equally
// unreachable in practice, and a permission problem must not be masked as
// a data problem. A missing document triggers the raw-entry fallback for
// transcripts only.
func (f *Fetcher) Fetch(ctx context.Context, kind Kind, ready Readiness) (string, error) {
	if ready.Verdict != VerdictReady {
		return "", fmt.Errorf("artifact is not ready (verdict %d)", ready.Verdict)
	}

	var content string
	err := f.exec.Do(ctx, "export document", func() error {
		var exportErr error
		content, exportErr = f.exporter.ExportPlainText(ctx, ready.Export.DocumentID)
		return exportErr
	})

	switch {
	case err == nil && strings.TrimSpace(content) != "":
		return content, nil

	case err != nil && googleapi.IsPermissionDenied(err):
		return "", err

	case !kind.AllowsFallback():
		if err != nil {
			return "", err
		}
		return "", ErrContentEmpty

	case err != nil && !googleapi.IsNotFound(err):
		// Unexpected export failure: note it and still try the raw
		// entries, matching the preferred-then-fallback contract.
		f.logger.Warn(ctx, "document export failed, falling back to raw entries",
			zap.String("document_id", ready.Export.DocumentID),
			zap.Error(err),
		)
	}

	return f.fetchFromEntries(ctx, ready.ArtifactName)
}

// fetchFromEntries paginates through raw transcript entries and
// reconstructs readable text. Each page fetch is individually wrapped by
// the retry executor.
func (f *Fetcher) fetchFromEntries(ctx context.Context, transcriptName string) (string, error) {
	var all []transcript.Entry
	pageToken := ""

	for {
		var page []meet.TranscriptEntry
		var next string
		err := f.exec.Do(ctx, "list transcript entries", func() error {
			var listErr error
			page, next, listErr = f.entries.ListTranscriptEntries(ctx, transcriptName, pageToken)
			return listErr
		})
		if err != nil {
			return "", err
		}

		for _, e := range page {
			all = append(all, transcript.Entry{Speaker: e.Participant, Text: e.Text})
		}

		pageToken = next
		if pageToken == "" {
			break
		}
	}

	if len(all) == 0 {
		return "", ErrContentEmpty
	}

	f.logger.Debug(ctx, "reconstructed transcript from raw entries",
		zap.Int("entries", len(all)),
	)
	return transcript.FormatEntries(all), nil
}
