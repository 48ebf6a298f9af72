package store

import (
	"context"
	"errors"

	"github.com/foyerapp/calsync/internal/model"
)

// ErrNotFound is returned when no record exists for the given key.
var ErrNotFound = errors.New("store: not found")

// ErrVersionConflict is returned by Save when the record was modified
// since it was read.
var ErrVersionConflict = errors.New("store: version conflict")

// ConfigStore persists one record per linked external calendar.
type ConfigStore interface {
	// Create inserts a new configuration and initializes its version.
	Create(ctx context.Context, cal *model.ExternalCalendarConfig) error

	// Get returns the configuration with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.ExternalCalendarConfig, error)

	// ListForUser returns every configuration owned by userID.
	ListForUser(ctx context.Context, userID string) ([]*model.ExternalCalendarConfig, error)

	// Save writes the configuration back. The stored version must match
	// cal.Version or ErrVersionConflict is returned; on success
	// cal.Version is bumped.
	Save(ctx context.Context, cal *model.ExternalCalendarConfig) error

	// Delete removes the configuration. Previously imported events stay
	// behind as ordinary local events.
	Delete(ctx context.Context, id string) error
}

// LocalEventRepository is the household app's own event store, seen
// through the two operations the sync engine needs.
type LocalEventRepository interface {
	// FindForExport returns local entities of the given source types whose
	// start falls inside the window, shaped as exportable events.
	FindForExport(ctx context.Context, userID string, sourceTypes []model.SourceType, window model.Window) ([]model.CalendarEventExternal, error)

	// UpsertImported stores one imported remote event. The operation is
	// idempotent: re-importing the same remote event (matched by external
	// id, else by title+start) updates in place. Each call is atomic.
	UpsertImported(ctx context.Context, userID string, ev model.CalendarEventExternal) error
}
