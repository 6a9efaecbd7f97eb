package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetfetch/meetfetch/internal/artifact"
	"github.com/meetfetch/meetfetch/internal/auth"
	"github.com/meetfetch/meetfetch/internal/config"
	"github.com/meetfetch/meetfetch/internal/drive"
	"github.com/meetfetch/meetfetch/internal/engine"
	"github.com/meetfetch/meetfetch/internal/logging"
	"github.com/meetfetch/meetfetch/internal/meet"
	"github.com/meetfetch/meetfetch/internal/resolve"
	"github.com/meetfetch/meetfetch/internal/retry"
)

var (
	meetingCode     string
	afterFlag       string
	beforeFlag      string
	formatFlag      string
	includeSpeakers bool
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Fetch the transcript of a meeting",
	Long: `Fetch the transcript of a Google Meet session.

The meeting is identified by its meeting code and a time window. Without
--before, the window extends 4 hours past --after. When several sessions
of the same code fall inside the window, the one starting closest to
--after wins.

Examples:
  meetfetch transcript --meeting-code abc-defg-hij --after 2024-01-15T14:00:00
  meetfetch transcript --meeting-code abc-defg-hij --after 2024-01-15T14:00:00 --format text
  meetfetch transcript --meeting-code abc-defg-hij --after 2024-01-15T14:00:00 --before 2024-01-15T16:00:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), artifact.KindTranscript)
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Fetch the AI-generated notes of a meeting",
	Long: `Fetch the AI-generated "smart notes" summary of a Google Meet session.

Notes require the "take notes for me" feature, available on Gemini
Workspace plans. Session selection works exactly like the transcript
command.

Examples:
  meetfetch notes --meeting-code abc-defg-hij --after 2024-01-15T14:00:00
  meetfetch notes --meeting-code abc-defg-hij --after 2024-01-15T14:00:00 --format text`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), artifact.KindNotes)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{transcriptCmd, notesCmd} {
		cmd.Flags().StringVar(&meetingCode, "meeting-code", "", "Google Meet code (e.g., abc-defg-hij from the meeting URL)")
		cmd.Flags().StringVar(&afterFlag, "after", "", "find the session starting after this time (e.g., 2024-01-15T14:00:00)")
		cmd.Flags().StringVar(&beforeFlag, "before", "", "find the session starting before this time (default: --after + 4 hours)")
		cmd.Flags().StringVar(&formatFlag, "format", "json", "output format: json or text")
		_ = cmd.MarkFlagRequired("meeting-code")
		_ = cmd.MarkFlagRequired("after")
	}
	transcriptCmd.Flags().BoolVar(&includeSpeakers, "include-speakers", false, "keep speaker labels in text output (only affects --format text)")
}

func runFetch(ctx context.Context, kind artifact.Kind) error {
	if formatFlag != "json" && formatFlag != "text" {
		return fmt.Errorf("invalid --format %q (expected json or text)", formatFlag)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	window, err := parseWindow(afterFlag, beforeFlag)
	if err != nil {
		return report(kind, &engine.Error{
			Kind:        engine.KindInvalidInput,
			Message:     err.Error(),
			MeetingCode: engine.NormalizeMeetingCode(meetingCode),
		})
	}

	provider := auth.NewProvider(cfg.Auth, logger)
	httpClient, err := provider.Client(ctx)
	if err != nil {
		return report(kind, classifyAuthError(err))
	}

	meetClient, err := meet.NewClient(&cfg.Meet, httpClient, logger)
	if err != nil {
		return err
	}
	driveClient, err := drive.NewClient(&cfg.Drive, httpClient)
	if err != nil {
		return err
	}

	exec := retry.New(cfg.Retry, logger)
	resolver := resolve.NewResolver(meetClient, exec, logger)
	fetcher := artifact.NewFetcher(driveClient, meetClient, exec, logger)
	eng := engine.New(resolver, meetClient, fetcher, exec, logger)

	result, err := eng.Get(ctx, engine.Request{
		MeetingCode: meetingCode,
		Kind:        kind,
		Window:      window,
	})
	if err != nil {
		var engineErr *engine.Error
		if !errors.As(err, &engineErr) {
			return err
		}
		// Token refresh failures surface from inside the first API
		// call; pull them out of the generic remote classification.
		if errors.Is(err, auth.ErrRefreshFailed) {
			engineErr.Kind = engine.KindAuthRefreshFailed
			engineErr.Message = fmt.Sprintf("token refresh failed, run 'meetfetch auth login' to re-authorize: %v", err)
		}
		return report(kind, engineErr)
	}

	return renderResult(os.Stdout, kind, formatFlag, includeSpeakers, result)
}

// parseWindow builds the session window from the CLI timestamps.
func parseWindow(after, before string) (resolve.Window, error) {
	afterTime, err := resolve.ParseTimestamp(after)
	if err != nil {
		return resolve.Window{}, fmt.Errorf("invalid --after timestamp: %w", err)
	}

	if before == "" {
		return resolve.NewWindow(afterTime, time.Time{}), nil
	}
	parsedBefore, err := resolve.ParseTimestamp(before)
	if err != nil {
		return resolve.Window{}, fmt.Errorf("invalid --before timestamp: %w", err)
	}
	window := resolve.NewWindow(afterTime, parsedBefore)
	if err := window.Validate(); err != nil {
		return resolve.Window{}, err
	}
	return window, nil
}

// classifyAuthError maps credential loading failures to output error
// kinds.
func classifyAuthError(err error) *engine.Error {
	engineErr := &engine.Error{MeetingCode: engine.NormalizeMeetingCode(meetingCode)}
	switch {
	case errors.Is(err, auth.ErrConfigMissing):
		engineErr.Kind = engine.KindAuthConfigMissing
		engineErr.Message = err.Error()
	case errors.Is(err, auth.ErrNotAuthorized):
		engineErr.Kind = engine.KindAuthConfigMissing
		engineErr.Message = fmt.Sprintf("%v; run 'meetfetch auth login' to authorize", err)
	case errors.Is(err, auth.ErrRefreshFailed):
		engineErr.Kind = engine.KindAuthRefreshFailed
		engineErr.Message = fmt.Sprintf("%v; run 'meetfetch auth login' to re-authorize", err)
	default:
		engineErr.Kind = engine.KindUpstreamError
		engineErr.Message = err.Error()
	}
	return engineErr
}

// report renders a failure in the requested format and converts it to
// the already-reported sentinel so main exits non-zero without
// double-printing.
func report(kind artifact.Kind, engineErr *engine.Error) error {
	renderError(os.Stdout, os.Stderr, kind, formatFlag, engineErr)
	return errReported
}
