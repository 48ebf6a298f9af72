package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foyerapp/calsync/internal/google"
	"github.com/foyerapp/calsync/internal/ical"
	"github.com/foyerapp/calsync/internal/model"
	"github.com/foyerapp/calsync/internal/provider"
	"github.com/foyerapp/calsync/internal/store"
)

// DefaultSyncHorizon bounds how far ahead a pass looks for events to
// transfer in either direction.
const DefaultSyncHorizon = 30 * 24 * time.Hour

// lookBehind is how far into the past a pass window reaches, so events
// edited shortly after they happened still reconcile.
const lookBehind = 24 * time.Hour

// ProviderClient is the provider-side surface a pass needs. Implemented
// by provider.Client for Google; faked in tests.
type ProviderClient interface {
	ListEvents(ctx context.Context, window model.Window) ([]model.CalendarEventExternal, error)
	CreateOrUpdate(ctx context.Context, ev model.CalendarEventExternal) (externalID string, updated bool, err error)
}

// ProviderFactory builds a provider client authorized for one
// configuration. Called once per pass, after the token check.
type ProviderFactory func(ctx context.Context, cal *model.ExternalCalendarConfig) (ProviderClient, error)

// FeedFetcher retrieves iCal subscription feeds. Implemented by
// ical.Fetcher.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TokenManager is the OAuth lifecycle surface the engine needs.
// Implemented by google.Manager.
type TokenManager interface {
	NeedsRefresh(cal *model.ExternalCalendarConfig, now time.Time) bool
	Refresh(ctx context.Context, cal *model.ExternalCalendarConfig) error
	BuildAuthorizationURL(userID, redirectURI string) (string, error)
	HandleAuthorizationCallback(ctx context.Context, code, userID, redirectURI string) (*google.TokenPair, error)
}

// Options configures an Engine. ConfigStore, Events and Tokens are
// required; everything else has defaults.
type Options struct {
	ConfigStore store.ConfigStore
	Events      store.LocalEventRepository
	Tokens      TokenManager
	Fetcher     FeedFetcher
	NewProvider ProviderFactory
	Logger      *slog.Logger
	Clock       func() time.Time
	Horizon     time.Duration
	Timeout     time.Duration
}

// Engine is the calendar synchronization engine facade. One Engine serves
// all users; passes for different configurations may run concurrently,
// but callers must serialize passes per configuration id.
type Engine struct {
	configs     store.ConfigStore
	events      store.LocalEventRepository
	tokens      TokenManager
	fetcher     FeedFetcher
	newProvider ProviderFactory
	logger      *slog.Logger
	clock       func() time.Time
	horizon     time.Duration
}

// New creates an Engine from options, filling in defaults.
func New(opts Options) *Engine {
	e := &Engine{
		configs:     opts.ConfigStore,
		events:      opts.Events,
		tokens:      opts.Tokens,
		fetcher:     opts.Fetcher,
		newProvider: opts.NewProvider,
		logger:      opts.Logger,
		clock:       opts.Clock,
		horizon:     opts.Horizon,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.horizon <= 0 {
		e.horizon = DefaultSyncHorizon
	}
	if e.fetcher == nil {
		e.fetcher = ical.NewFetcher(opts.Timeout, e.logger)
	}
	if e.newProvider == nil {
		timeout := opts.Timeout
		e.newProvider = func(ctx context.Context, cal *model.ExternalCalendarConfig) (ProviderClient, error) {
			return provider.NewClient(ctx, cal, timeout, e.logger)
		}
	}
	return e
}

// AddCalendar validates and stores a new linked-calendar configuration,
// returning its id. A missing id is generated.
func (e *Engine) AddCalendar(ctx context.Context, cal *model.ExternalCalendarConfig) (string, error) {
	if cal.UserID == "" {
		return "", &model.ConfigurationError{Reason: "calendar has no owning user"}
	}
	if !cal.Provider.IsValid() {
		return "", &model.ConfigurationError{Reason: fmt.Sprintf("unknown provider %q", cal.Provider)}
	}
	if !cal.Direction.IsValid() {
		return "", &model.ConfigurationError{Reason: fmt.Sprintf("unknown sync direction %q", cal.Direction)}
	}
	if !cal.Provider.RequiresOAuth() {
		if cal.ICalURL == "" {
			return "", &model.ConfigurationError{Reason: fmt.Sprintf("provider %s requires a feed URL", cal.Provider)}
		}
		if cal.AccessToken != "" || cal.RefreshToken != "" {
			return "", &model.ConfigurationError{Reason: "feed calendars never carry OAuth tokens"}
		}
	}
	if (cal.AccessToken == "") != cal.TokenExpiry.IsZero() {
		return "", &model.ConfigurationError{Reason: "access token and expiry must be set together"}
	}
	if cal.ID == "" {
		cal.ID = model.NewConfigID()
	}
	if cal.Name == "" {
		cal.Name = model.DefaultCalendarName
	}

	if err := e.configs.Create(ctx, cal); err != nil {
		return "", fmt.Errorf("store calendar: %w", err)
	}
	e.logger.Info("calendar linked",
		"config_id", cal.ID, "provider", string(cal.Provider))
	return cal.ID, nil
}

// RemoveCalendar unlinks a calendar. Events imported from it remain
// behind as ordinary local events.
func (e *Engine) RemoveCalendar(ctx context.Context, id string) error {
	if err := e.configs.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove calendar %s: %w", id, err)
	}
	e.logger.Info("calendar unlinked", "config_id", id)
	return nil
}

// ListCalendarsForUser returns every calendar linked by userID.
func (e *Engine) ListCalendarsForUser(ctx context.Context, userID string) ([]*model.ExternalCalendarConfig, error) {
	return e.configs.ListForUser(ctx, userID)
}

// RunSync executes one full pass for the configuration, in its configured
// direction.
func (e *Engine) RunSync(ctx context.Context, configID string) *model.SyncResult {
	return e.runPass(ctx, configID, "")
}

// ImportFromICalURL executes an import-only pass for an iCal-feed
// configuration.
func (e *Engine) ImportFromICalURL(ctx context.Context, configID string) *model.SyncResult {
	return e.runPass(ctx, configID, model.DirectionImportOnly)
}

// ExportWindowToICalText renders every exportable local event of the user
// inside the window as an iCal document, for feeds the household app
// publishes itself.
func (e *Engine) ExportWindowToICalText(ctx context.Context, userID string, window model.Window) (string, error) {
	events, err := e.events.FindForExport(ctx, userID,
		[]model.SourceType{model.SourceMeal, model.SourceActivity, model.SourceGeneric}, window)
	if err != nil {
		return "", &model.PersistenceError{Op: "load events for export", Err: err}
	}
	return ical.Encode(events, "Planning familial"), nil
}

// BuildAuthorizationURL returns the provider consent URL for a user.
func (e *Engine) BuildAuthorizationURL(userID, redirectURI string) (string, error) {
	return e.tokens.BuildAuthorizationURL(userID, redirectURI)
}

// HandleAuthorizationCallback exchanges an authorization code for the
// initial token pair.
func (e *Engine) HandleAuthorizationCallback(ctx context.Context, code, userID, redirectURI string) (*google.TokenPair, error) {
	return e.tokens.HandleAuthorizationCallback(ctx, code, userID, redirectURI)
}

// passWindow is the active window of one pass: a short look-behind plus
// the configured horizon ahead.
func (e *Engine) passWindow(now time.Time) model.Window {
	return model.Window{
		From: now.Add(-lookBehind),
		To:   now.Add(e.horizon),
	}
}
