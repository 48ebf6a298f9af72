package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerapp/calsync/internal/model"
)

func TestEncodeMealScenario(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			Title:      "Déjeuner: Poulet",
			Start:      time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local),
			End:        time.Date(2026, 2, 10, 13, 0, 0, 0, time.Local),
			SourceType: model.SourceMeal,
			SourceID:   "meal-42",
		},
	}

	text := Encode(events, "Planning")

	assert.Contains(t, text, "BEGIN:VCALENDAR\r\n")
	assert.Contains(t, text, "VERSION:2.0\r\n")
	assert.Contains(t, text, "X-WR-CALNAME:Planning\r\n")
	assert.Contains(t, text, "SUMMARY:Déjeuner: Poulet")
	assert.Contains(t, text, "CATEGORIES:Repas")
	assert.Contains(t, text, "DTSTART:20260210T120000")
	assert.Contains(t, text, "DTEND:20260210T130000")
	assert.Contains(t, text, "UID:meal-42@calsync.foyer.app")
	assert.Contains(t, text, "END:VCALENDAR\r\n")
}

func TestEncodeActivityCategory(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			Title:      "Piscine",
			Start:      time.Date(2026, 3, 1, 14, 0, 0, 0, time.Local),
			End:        time.Date(2026, 3, 1, 16, 0, 0, 0, time.Local),
			SourceType: model.SourceActivity,
		},
	}

	text := Encode(events, "Planning")
	assert.Contains(t, text, "CATEGORIES:Activité Familiale")
}

func TestEncodeGenericOmitsCategories(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			Title: "Rendez-vous",
			Start: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local),
			End:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local),
		},
	}

	text := Encode(events, "Planning")
	assert.NotContains(t, text, "CATEGORIES")
}

func TestEncodeAllDayUsesValueDate(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			Title:  "Vacances scolaires",
			Start:  time.Date(2026, 2, 14, 0, 0, 0, 0, time.Local),
			End:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.Local),
			AllDay: true,
		},
	}

	text := Encode(events, "Planning")
	assert.Contains(t, text, "DTSTART;VALUE=DATE:20260214")
	assert.Contains(t, text, "DTEND;VALUE=DATE:20260215")
	assert.NotContains(t, text, "DTSTART:2026")
}

func TestEncodeKeepsExternalUID(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			ExternalID: "abc123@google.com",
			Title:      "Imported",
			Start:      time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local),
			End:        time.Date(2026, 2, 10, 13, 0, 0, 0, time.Local),
		},
	}

	text := Encode(events, "Planning")
	assert.Contains(t, text, "UID:abc123@google.com\r\n")
}

func TestEncodeEscapesReservedCharacters(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			Title:       `Dîner; fromage, vin \ pain`,
			Description: "ligne 1\nligne 2",
			Start:       time.Date(2026, 2, 10, 19, 0, 0, 0, time.Local),
			End:         time.Date(2026, 2, 10, 21, 0, 0, 0, time.Local),
		},
	}

	text := Encode(events, "Planning")
	assert.Contains(t, text, `SUMMARY:Dîner\; fromage\, vin \\ pain`)
	assert.Contains(t, text, `DESCRIPTION:ligne 1\nligne 2`)
}

func TestEncodeDeterministicApartFromDTSTAMP(t *testing.T) {
	events := []model.CalendarEventExternal{
		{
			SourceID: "meal-1",
			Title:    "Déjeuner",
			Start:    time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local),
			End:      time.Date(2026, 2, 10, 13, 0, 0, 0, time.Local),
		},
	}

	strip := func(s string) string {
		var kept []string
		for _, l := range strings.Split(s, "\r\n") {
			if !strings.HasPrefix(l, "DTSTAMP:") {
				kept = append(kept, l)
			}
		}
		return strings.Join(kept, "\r\n")
	}

	a := Encode(events, "Planning")
	b := Encode(events, "Planning")
	require.Equal(t, strip(a), strip(b))
}
