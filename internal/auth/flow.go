package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const callbackSuccessPage = "Authentication successful! You can close this window."

// Login runs the browser-based authorization flow: it starts a loopback
// callback server on an ephemeral port, reports the authorization URL
// through announce, waits for the redirect, exchanges the code, and
// persists the resulting token.
func (p *Provider) Login(ctx context.Context, announce func(authURL string)) error {
	oauthCfg, err := p.oauthConfig()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting callback listener: %w", err)
	}
	defer listener.Close()

	oauthCfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		return err
	}

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization state mismatch")}
			return
		}
		if errCode := query.Get("error"); errCode != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			results <- callback{err: fmt.Errorf("authorization denied: %s", errCode)}
			return
		}
		fmt.Fprint(w, callbackSuccessPage)
		results <- callback{code: query.Get("code")}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			results <- callback{err: fmt.Errorf("callback server: %w", serveErr)}
		}
	}()
	defer server.Close()

	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
	)
	if announce != nil {
		announce(authURL)
	}
	p.logger.Info(ctx, "waiting for browser authorization")

	var result callback
	select {
	case result = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.err != nil {
		return result.err
	}

	token, err := oauthCfg.Exchange(ctx, result.code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	if err := p.saveToken(token); err != nil {
		return err
	}
	p.logger.Info(ctx, "authorization complete",
		zap.String("token_file", p.cfg.TokenFile),
	)
	return nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
