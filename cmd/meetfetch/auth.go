package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetfetch/meetfetch/internal/auth"
	"github.com/meetfetch/meetfetch/internal/config"
	"github.com/meetfetch/meetfetch/internal/logging"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google API credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the browser-based authorization flow",
	Long: `Authorize meetfetch against the Google Meet and Drive APIs.

A browser window must be opened at the printed URL; the flow completes
through a loopback redirect and stores the token with owner-only
permissions.

Requires an OAuth client configuration (client_secrets.json) downloaded
from the Google Cloud Console.`,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of stored credentials",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
}

func authProvider() (*auth.Provider, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewProvider(cfg.Auth, logger), logger, nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	provider, logger, err := authProvider()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	err = provider.Login(cmd.Context(), func(authURL string) {
		fmt.Fprintln(os.Stderr, "Open this URL in your browser to authorize meetfetch:")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "  %s\n", authURL)
		fmt.Fprintln(os.Stderr)
	})
	if err != nil {
		return err
	}

	fmt.Println("Authorization complete.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	provider, logger, err := authProvider()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	status := provider.Status()

	fmt.Printf("Client secrets: %s\n", presence(status.ClientSecretsPresent))
	fmt.Printf("Stored token:   %s\n", presence(status.TokenPresent))
	if status.TokenPresent {
		fmt.Printf("Refresh token:  %s\n", presence(status.HasRefreshToken))
		if status.TokenExpiry.IsZero() {
			fmt.Println("Token expiry:   unknown")
		} else if status.TokenExpiry.Before(time.Now()) {
			fmt.Printf("Token expiry:   %s (expired, will refresh on next use)\n", status.TokenExpiry.Format(time.RFC3339))
		} else {
			fmt.Printf("Token expiry:   %s\n", status.TokenExpiry.Format(time.RFC3339))
		}
	}

	if !status.ClientSecretsPresent {
		fmt.Println("\nDownload an OAuth client configuration from the Google Cloud Console")
		fmt.Println("(APIs & Services > Credentials) and place it at the configured")
		fmt.Println("client_secrets_file path.")
	} else if !status.TokenPresent {
		fmt.Println("\nRun 'meetfetch auth login' to authorize.")
	}
	return nil
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
