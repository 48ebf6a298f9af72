package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CalendarProvider identifies an external calendar system.
type CalendarProvider string

const (
	ProviderGoogle         CalendarProvider = "google"
	ProviderApple          CalendarProvider = "apple"
	ProviderOutlook        CalendarProvider = "outlook"
	ProviderGenericICalURL CalendarProvider = "ical_url"
)

// IsValid returns true if the provider is a known valid value.
func (p CalendarProvider) IsValid() bool {
	switch p {
	case ProviderGoogle, ProviderApple, ProviderOutlook, ProviderGenericICalURL:
		return true
	}
	return false
}

// RequiresOAuth reports whether the provider is driven through an OAuth
// REST API. Apple and Outlook are reached through their iCal subscription
// URLs, so only Google needs a token pair.
func (p CalendarProvider) RequiresOAuth() bool {
	return p == ProviderGoogle
}

// SyncDirection controls which halves of a sync pass run.
type SyncDirection string

const (
	DirectionImportOnly    SyncDirection = "import_only"
	DirectionExportOnly    SyncDirection = "export_only"
	DirectionBidirectional SyncDirection = "bidirectional"
)

// IsValid returns true if the direction is a known valid value.
func (d SyncDirection) IsValid() bool {
	switch d {
	case DirectionImportOnly, DirectionExportOnly, DirectionBidirectional:
		return true
	}
	return false
}

// Imports reports whether a pass with this direction pulls remote events.
func (d SyncDirection) Imports() bool { return d != DirectionExportOnly }

// Exports reports whether a pass with this direction pushes local entities.
func (d SyncDirection) Exports() bool { return d != DirectionImportOnly }

// SourceType classifies which household entity an event came from.
type SourceType string

const (
	SourceMeal     SourceType = "meal"
	SourceActivity SourceType = "activity"
	SourceGeneric  SourceType = "generic"
)

// ExternalCalendarConfig is one linked external calendar for one user.
// Tokens and last-sync are mutated by the orchestrator after every pass;
// everything else is user-edited. Access token and token expiry are either
// both set or both empty, and feed-backed configs never carry tokens.
type ExternalCalendarConfig struct {
	ID             string
	UserID         string
	Provider       CalendarProvider
	Name           string
	CalendarID     string // provider-side calendar id
	ICalURL        string // subscription feed URL, set for every feed-backed provider
	AccessToken    string
	RefreshToken   string
	TokenExpiry    time.Time
	Direction      SyncDirection
	SyncMeals      bool
	SyncActivities bool
	SyncEvents     bool
	Active         bool
	LastSync       time.Time

	// Version guards the read-then-write at the end of a pass. The store
	// rejects a save whose version no longer matches the stored row.
	Version int64
}

// DefaultCalendarName is the display name applied when linking a calendar.
const DefaultCalendarName = "Mon calendrier"

// NewExternalCalendarConfig creates a linked-calendar record with defaults:
// bidirectional sync, all source types enabled, active.
func NewExternalCalendarConfig(userID string, provider CalendarProvider) *ExternalCalendarConfig {
	return &ExternalCalendarConfig{
		ID:             NewConfigID(),
		UserID:         userID,
		Provider:       provider,
		Name:           DefaultCalendarName,
		Direction:      DirectionBidirectional,
		SyncMeals:      true,
		SyncActivities: true,
		SyncEvents:     true,
		Active:         true,
	}
}

// NewConfigID returns a 12-character opaque configuration id.
func NewConfigID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// HasToken reports whether the config carries a usable access token.
func (c *ExternalCalendarConfig) HasToken() bool {
	return c.AccessToken != "" && !c.TokenExpiry.IsZero()
}

// CalendarEventExternal is the provider-agnostic event value exchanged with
// external calendars. Values are immutable after construction.
type CalendarEventExternal struct {
	LocalID     string
	ExternalID  string // empty until first export
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	SourceType  SourceType // empty for imported events of unknown origin
	SourceID    string     // local entity id; empty for imported events
}

// Window is a half-open [From, To) time range used to bound imports and
// exports.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window. A zero bound is
// treated as unbounded on that side.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// SyncResult is the outcome of one sync pass. Success is false whenever
// Errors is non-empty, even when some events were transferred.
type SyncResult struct {
	Success   bool
	Message   string
	Imported  int
	Exported  int
	Updated   int
	Conflicts []string
	Errors    []string
	Duration  time.Duration
}

// AddError records one per-item error on the result.
func (r *SyncResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Finalize sets the success flag and summary message from the accumulated
// counters and errors.
func (r *SyncResult) Finalize(elapsed time.Duration) {
	r.Duration = elapsed
	r.Success = len(r.Errors) == 0
	if r.Success {
		r.Message = "synchronisation terminée"
	} else {
		r.Message = "synchronisation terminée avec erreurs"
	}
}
