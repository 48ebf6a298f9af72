package google

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/foyerapp/calsync/internal/config"
	"github.com/foyerapp/calsync/internal/logging"
	"github.com/foyerapp/calsync/internal/model"
)

// CalendarScope is the only scope the engine requests.
const CalendarScope = "https://www.googleapis.com/auth/calendar"

// TokenPair is the result of an authorization-code exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Manager drives the OAuth token lifecycle against the provider's token
// endpoint.
type Manager struct {
	clientID     string
	clientSecret string
	redirectURI  string
	endpoint     oauth2.Endpoint
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewManager creates a token manager using Google's OAuth endpoints and
// the client credentials from the application config.
func NewManager(cfg config.GoogleConfig, timeout time.Duration, logger *slog.Logger) *Manager {
	return NewManagerWithEndpoint(cfg, googleoauth.Endpoint, timeout, logger)
}

// NewManagerWithEndpoint is NewManager with an explicit OAuth endpoint,
// used by tests to point exchanges at a local server.
func NewManagerWithEndpoint(cfg config.GoogleConfig, endpoint oauth2.Endpoint, timeout time.Duration, logger *slog.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		endpoint:     endpoint,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// NeedsRefresh reports whether cal's access token must be (re)obtained
// before calling the provider: the token has reached its expiry, or the
// provider requires OAuth and no token is present.
func (m *Manager) NeedsRefresh(cal *model.ExternalCalendarConfig, now time.Time) bool {
	if !cal.Provider.RequiresOAuth() {
		return false
	}
	if cal.AccessToken == "" {
		return true
	}
	return !cal.TokenExpiry.IsZero() && !now.Before(cal.TokenExpiry)
}

// Refresh rotates cal's access token using its refresh token. On success
// the token fields are mutated in place; on any failure cal is left
// untouched. The caller persists the rotated pair before using it.
func (m *Manager) Refresh(ctx context.Context, cal *model.ExternalCalendarConfig) error {
	if err := m.checkCredentials(); err != nil {
		return err
	}
	if cal.RefreshToken == "" {
		return &model.ConfigurationError{Reason: "no refresh token for calendar " + cal.ID}
	}

	conf := m.oauthConfig(m.redirectURI)
	src := conf.TokenSource(m.outboundContext(ctx), &oauth2.Token{RefreshToken: cal.RefreshToken})

	tok, err := src.Token()
	if err != nil {
		m.logger.Warn("token refresh failed", logging.ConfigID(cal.ID), logging.Err(err))
		return &model.TransportError{Op: "refresh token", Err: err}
	}

	cal.AccessToken = tok.AccessToken
	cal.TokenExpiry = tok.Expiry
	if tok.RefreshToken != "" {
		cal.RefreshToken = tok.RefreshToken
	}

	m.logger.Info("access token rotated",
		logging.ConfigID(cal.ID),
		"token", logging.SanitizeToken(tok.AccessToken),
		"expiry", tok.Expiry)
	return nil
}

// BuildAuthorizationURL returns the URL a user visits to grant calendar
// access. The user id travels in the OAuth state parameter.
func (m *Manager) BuildAuthorizationURL(userID, redirectURI string) (string, error) {
	if err := m.checkCredentials(); err != nil {
		return "", err
	}
	conf := m.oauthConfig(redirectURI)
	return conf.AuthCodeURL(userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// HandleAuthorizationCallback exchanges an authorization code for the
// initial token pair. A failed exchange returns no partial state.
func (m *Manager) HandleAuthorizationCallback(ctx context.Context, code, userID, redirectURI string) (*TokenPair, error) {
	if err := m.checkCredentials(); err != nil {
		return nil, err
	}

	conf := m.oauthConfig(redirectURI)
	tok, err := conf.Exchange(m.outboundContext(ctx), code)
	if err != nil {
		m.logger.Warn("authorization code exchange failed",
			logging.UserHash(userID), logging.Err(err))
		return nil, &model.TransportError{Op: "exchange authorization code", Err: err}
	}

	m.logger.Info("authorization code exchanged", logging.UserHash(userID))
	return &TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

func (m *Manager) checkCredentials() error {
	if m.clientID == "" || m.clientSecret == "" {
		return &model.ConfigurationError{Reason: "google client id/secret are not configured"}
	}
	return nil
}

func (m *Manager) oauthConfig(redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = m.redirectURI
	}
	return &oauth2.Config{
		ClientID:     m.clientID,
		ClientSecret: m.clientSecret,
		Endpoint:     m.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       []string{CalendarScope},
	}
}

// outboundContext injects the manager's timeout-bounded HTTP client into
// the oauth2 transport.
func (m *Manager) outboundContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}
