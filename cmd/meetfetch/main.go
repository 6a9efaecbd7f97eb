// Package main implements the meetfetch CLI for retrieving Google Meet
// transcripts and AI-generated meeting notes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath overrides the default config file location.
	configPath string
	// version information
	version = "dev"
)

// errReported marks failures whose output was already rendered; main
// must not print them again.
var errReported = errors.New("reported")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meetfetch",
	Short: "Fetch Google Meet transcripts and AI notes",
	Long: `meetfetch retrieves artifacts that Google Meet generates for a meeting:
the speech transcript and the AI "smart notes" summary.

Meetings are addressed by their meeting code (the abc-defg-hij part of the
meeting URL) plus a time window, since one code is reused across sessions.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/meetfetch/config.yaml)")
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(authCmd)
}
