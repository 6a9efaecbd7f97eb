package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/meetfetch/meetfetch/internal/logging"
)

// Provider loads OAuth credentials and hands out authenticated HTTP
// clients. Refreshed tokens are written back to the token file so the
// next invocation does not refresh again.
type Provider struct {
	cfg    Config
	logger *logging.Logger
}

// NewProvider creates a Provider. A nil logger disables logging.
func NewProvider(cfg Config, logger *logging.Logger) *Provider {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{cfg: cfg, logger: logger}
}

// Client returns an HTTP client that attaches and refreshes the stored
// token. ErrConfigMissing and ErrNotAuthorized are returned before any
// network activity; refresh failures surface as ErrRefreshFailed from
// the first request.
func (p *Provider) Client(ctx context.Context) (*http.Client, error) {
	source, err := p.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, source), nil
}

// TokenSource returns a refreshing, persisting token source backed by
// the token file.
func (p *Provider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	oauthCfg, err := p.oauthConfig()
	if err != nil {
		return nil, err
	}

	token, err := p.loadToken()
	if err != nil {
		return nil, err
	}

	return &persistingSource{
		provider: p,
		base:     oauthCfg.TokenSource(ctx, token),
		last:     token.AccessToken,
	}, nil
}

// Status describes the current credential state without performing any
// network activity.
type Status struct {
	ClientSecretsPresent bool
	TokenPresent         bool
	TokenExpiry          time.Time
	HasRefreshToken      bool
}

// Status inspects the credential files on disk.
func (p *Provider) Status() Status {
	var s Status
	if _, err := os.Stat(p.cfg.ClientSecretsFile); err == nil {
		s.ClientSecretsPresent = true
	}
	token, err := p.loadToken()
	if err != nil {
		return s
	}
	s.TokenPresent = true
	s.TokenExpiry = token.Expiry
	s.HasRefreshToken = token.RefreshToken != ""
	return s
}

func (p *Provider) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(p.cfg.ClientSecretsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (download from Google Cloud Console > APIs & Services > Credentials)",
				ErrConfigMissing, p.cfg.ClientSecretsFile)
		}
		return nil, fmt.Errorf("reading client secrets: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(data, Scopes()...)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfigMissing, p.cfg.ClientSecretsFile, err)
	}
	return oauthCfg, nil
}

func (p *Provider) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(p.cfg.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, p.cfg.TokenFile)
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: token file %s is corrupt: %v", ErrNotAuthorized, p.cfg.TokenFile, err)
	}
	return &token, nil
}

// saveToken writes the token with owner-only permissions.
func (p *Provider) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(p.cfg.TokenFile), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(p.cfg.TokenFile, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	p.logger.Debug(context.Background(), "token saved",
		zap.String("path", p.cfg.TokenFile),
	)
	return nil
}

// persistingSource wraps a refreshing token source and writes refreshed
// tokens back to disk.
type persistingSource struct {
	provider *Provider
	base     oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if saveErr := s.provider.saveToken(token); saveErr != nil {
			// A failed save is not fatal for the request in flight.
			s.provider.logger.Warn(context.Background(), "failed to persist refreshed token",
				zap.Error(saveErr),
			)
		}
		s.last = token.AccessToken
	}
	return token, nil
}
