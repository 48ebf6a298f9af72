package sync

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerapp/calsync/internal/model"
)

func TestAddCalendarDefaultsAndStorage(t *testing.T) {
	f := newFixture(t)

	cal := &model.ExternalCalendarConfig{
		UserID:    "u1",
		Provider:  model.ProviderGoogle,
		Direction: model.DirectionBidirectional,
	}
	id, err := f.engine.AddCalendar(t.Context(), cal)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Len(t, id, 12)

	stored, err := f.configs.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCalendarName, stored.Name)
}

func TestAddCalendarValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cal  *model.ExternalCalendarConfig
	}{
		{
			name: "missing user",
			cal: &model.ExternalCalendarConfig{
				Provider:  model.ProviderGoogle,
				Direction: model.DirectionBidirectional,
			},
		},
		{
			name: "unknown provider",
			cal: &model.ExternalCalendarConfig{
				UserID:    "u1",
				Provider:  model.CalendarProvider("caldav"),
				Direction: model.DirectionBidirectional,
			},
		},
		{
			name: "unknown direction",
			cal: &model.ExternalCalendarConfig{
				UserID:    "u1",
				Provider:  model.ProviderGoogle,
				Direction: model.SyncDirection("both"),
			},
		},
		{
			name: "feed without url",
			cal: &model.ExternalCalendarConfig{
				UserID:    "u1",
				Provider:  model.ProviderGenericICalURL,
				Direction: model.DirectionImportOnly,
			},
		},
		{
			name: "apple without feed url",
			cal: &model.ExternalCalendarConfig{
				UserID:    "u1",
				Provider:  model.ProviderApple,
				Direction: model.DirectionImportOnly,
			},
		},
		{
			name: "outlook without feed url",
			cal: &model.ExternalCalendarConfig{
				UserID:    "u1",
				Provider:  model.ProviderOutlook,
				Direction: model.DirectionImportOnly,
			},
		},
		{
			name: "feed carrying tokens",
			cal: &model.ExternalCalendarConfig{
				UserID:      "u1",
				Provider:    model.ProviderGenericICalURL,
				Direction:   model.DirectionImportOnly,
				ICalURL:     "https://example.com/cal.ics",
				AccessToken: "tok",
				TokenExpiry: time.Now().Add(time.Hour),
			},
		},
		{
			name: "token without expiry",
			cal: &model.ExternalCalendarConfig{
				UserID:      "u1",
				Provider:    model.ProviderGoogle,
				Direction:   model.DirectionBidirectional,
				AccessToken: "tok",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.AddCalendar(t.Context(), tc.cal)
			require.Error(t, err)
			var cfgErr *model.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRemoveCalendar(t *testing.T) {
	f := newFixture(t)
	cal := f.linkGoogle(t)

	require.NoError(t, f.engine.RemoveCalendar(t.Context(), cal.ID))
	_, err := f.configs.Get(t.Context(), cal.ID)
	assert.Error(t, err)

	assert.Error(t, f.engine.RemoveCalendar(t.Context(), cal.ID))
}

func TestListCalendarsForUser(t *testing.T) {
	f := newFixture(t)
	f.linkGoogle(t)
	f.linkGoogle(t)

	other := model.NewExternalCalendarConfig("u2", model.ProviderGoogle)
	require.NoError(t, f.configs.Create(t.Context(), other))

	cals, err := f.engine.ListCalendarsForUser(t.Context(), "u1")
	require.NoError(t, err)
	assert.Len(t, cals, 2)
}

func TestExportWindowToICalText(t *testing.T) {
	f := newFixture(t)
	f.seedLocals(2)
	f.events.AddLocal("u1", model.CalendarEventExternal{
		SourceType: model.SourceActivity,
		SourceID:   "act-1",
		Title:      "Cours de natation",
		Start:      time.Now().Add(48 * time.Hour),
		End:        time.Now().Add(49 * time.Hour),
	})

	window := model.Window{From: time.Now(), To: time.Now().Add(30 * 24 * time.Hour)}
	text, err := f.engine.ExportWindowToICalText(t.Context(), "u1", window)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, text, "X-WR-CALNAME:Planning familial")
	assert.Contains(t, text, "SUMMARY:Cours de natation")
	assert.Contains(t, text, "CATEGORIES:Activité Familiale")
	assert.Equal(t, 3, strings.Count(text, "BEGIN:VEVENT"))
}

func TestExportWindowToICalTextEmpty(t *testing.T) {
	f := newFixture(t)

	text, err := f.engine.ExportWindowToICalText(t.Context(), "u1", model.Window{})
	require.NoError(t, err)
	assert.Contains(t, text, "END:VCALENDAR")
	assert.NotContains(t, text, "BEGIN:VEVENT")
}

func TestBuildAuthorizationURLDelegates(t *testing.T) {
	f := newFixture(t)

	url, err := f.engine.BuildAuthorizationURL("u1", "https://app.example.com/cb")
	require.NoError(t, err)
	assert.Contains(t, url, "state=u1")
}
