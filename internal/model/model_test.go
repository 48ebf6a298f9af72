package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewExternalCalendarConfigDefaults(t *testing.T) {
	cfg := NewExternalCalendarConfig("u1", ProviderGoogle)

	assert.Len(t, cfg.ID, 12)
	assert.Equal(t, "u1", cfg.UserID)
	assert.Equal(t, ProviderGoogle, cfg.Provider)
	assert.Equal(t, "Mon calendrier", cfg.Name)
	assert.Equal(t, DirectionBidirectional, cfg.Direction)
	assert.True(t, cfg.SyncMeals)
	assert.True(t, cfg.SyncActivities)
	assert.True(t, cfg.SyncEvents)
	assert.True(t, cfg.Active)
	assert.False(t, cfg.HasToken())
}

func TestNewConfigIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewConfigID()
		assert.Len(t, id, 12)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestProviderRequiresOAuth(t *testing.T) {
	tests := []struct {
		provider CalendarProvider
		oauth    bool
	}{
		{ProviderGoogle, true},
		{ProviderApple, false},
		{ProviderOutlook, false},
		{ProviderGenericICalURL, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.oauth, tt.provider.RequiresOAuth(), string(tt.provider))
	}
}

func TestDirectionGates(t *testing.T) {
	assert.True(t, DirectionBidirectional.Imports())
	assert.True(t, DirectionBidirectional.Exports())
	assert.True(t, DirectionImportOnly.Imports())
	assert.False(t, DirectionImportOnly.Exports())
	assert.False(t, DirectionExportOnly.Imports())
	assert.True(t, DirectionExportOnly.Exports())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ProviderGoogle.IsValid())
	assert.False(t, CalendarProvider("caldav").IsValid())
	assert.True(t, DirectionImportOnly.IsValid())
	assert.False(t, SyncDirection("both").IsValid())
}

func TestWindowContains(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w := Window{From: from, To: to}

	assert.True(t, w.Contains(from))
	assert.True(t, w.Contains(from.Add(24*time.Hour)))
	assert.False(t, w.Contains(to))
	assert.False(t, w.Contains(from.Add(-time.Second)))

	open := Window{}
	assert.True(t, open.Contains(time.Now()))
}

func TestSyncResultFinalize(t *testing.T) {
	r := &SyncResult{Imported: 3, Exported: 2}
	r.Finalize(time.Second)
	assert.True(t, r.Success)
	assert.Equal(t, time.Second, r.Duration)

	r = &SyncResult{Exported: 2}
	r.AddError("export failed: boom")
	r.Finalize(time.Second)
	assert.False(t, r.Success, "errors must force success=false even with counts")
	assert.Len(t, r.Errors, 1)
}
