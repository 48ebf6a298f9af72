package ical

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foyerapp/calsync/internal/model"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Example//Feed//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-1@example.com\r\n" +
	"DTSTART:20260210T120000\r\n" +
	"DTEND:20260210T130000\r\n" +
	"SUMMARY:Déjeuner\r\n" +
	"LOCATION:Cuisine\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-2@example.com\r\n" +
	"SUMMARY:Pas de date\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-3@example.com\r\n" +
	"DTSTART;VALUE=DATE:20260214\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestDecodeSampleFeed(t *testing.T) {
	events := Decode(sampleFeed, nil)
	require.Len(t, events, 2, "block without DTSTART must be dropped")

	first := events[0]
	assert.Equal(t, "evt-1@example.com", first.ExternalID)
	assert.Equal(t, "Déjeuner", first.Title)
	assert.Equal(t, "Cuisine", first.Location)
	assert.False(t, first.AllDay)
	assert.Equal(t, time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local), first.Start)
	assert.Equal(t, time.Date(2026, 2, 10, 13, 0, 0, 0, time.Local), first.End)

	second := events[1]
	assert.True(t, second.AllDay)
	assert.Equal(t, PlaceholderTitle, second.Title, "missing SUMMARY gets the placeholder")
	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.Local), second.Start)
	assert.Equal(t, second.Start.Add(24*time.Hour), second.End, "missing DTEND defaults to one day for all-day events")
}

func TestDecodeUTCDateTime(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n" +
		"UID:u1\r\nDTSTART:20260210T110000Z\r\nDTEND:20260210T120000Z\r\nSUMMARY:UTC\r\n" +
		"END:VEVENT\r\nEND:VCALENDAR\r\n"

	events := Decode(text, nil)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC), events[0].Start.UTC())
}

func TestDecodeMissingDTENDTimedDefault(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n" +
		"UID:u1\r\nDTSTART:20260210T090000\r\nSUMMARY:Solo\r\n" +
		"END:VEVENT\r\nEND:VCALENDAR\r\n"

	events := Decode(text, nil)
	require.Len(t, events, 1)
	assert.Equal(t, events[0].Start.Add(time.Hour), events[0].End)
}

func TestDecodeUnfoldsContinuationLines(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\n" +
		"UID:u1\r\nDTSTART:20260210T090000\r\n" +
		"SUMMARY:Un titre particulièrement lon\r\n g qui continue\r\n" +
		"END:VEVENT\r\nEND:VCALENDAR\r\n"

	events := Decode(text, nil)
	require.Len(t, events, 1)
	assert.Equal(t, "Un titre particulièrement long qui continue", events[0].Title)
}

func TestDecodeGarbageReturnsNothing(t *testing.T) {
	assert.Empty(t, Decode("not an ical document at all", nil))
	assert.Empty(t, Decode("", nil))
}

func TestRoundTrip(t *testing.T) {
	original := []model.CalendarEventExternal{
		{
			SourceID:    "meal-1",
			Title:       "Déjeuner: Poulet",
			Description: "Avec des légumes\net du riz",
			Start:       time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local),
			End:         time.Date(2026, 2, 10, 13, 0, 0, 0, time.Local),
			Location:    "Maison",
			SourceType:  model.SourceMeal,
		},
		{
			SourceID:   "act-7",
			Title:      "Sortie vélo",
			Start:      time.Date(2026, 2, 11, 10, 30, 0, 0, time.Local),
			End:        time.Date(2026, 2, 11, 12, 0, 0, 0, time.Local),
			SourceType: model.SourceActivity,
		},
		{
			SourceID: "evt-3",
			Title:    "Anniversaire",
			Start:    time.Date(2026, 2, 14, 0, 0, 0, 0, time.Local),
			End:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.Local),
			AllDay:   true,
		},
	}

	decoded := Decode(Encode(original, "Planning"), nil)
	require.Len(t, decoded, len(original))

	byTitle := make(map[string]model.CalendarEventExternal)
	for _, ev := range decoded {
		byTitle[ev.Title] = ev
	}

	for _, want := range original {
		got, ok := byTitle[want.Title]
		require.True(t, ok, "missing event %q after round trip", want.Title)
		assert.Equal(t, want.Start.Truncate(time.Minute), got.Start.Truncate(time.Minute))
		assert.Equal(t, want.End.Truncate(time.Minute), got.End.Truncate(time.Minute))
		assert.Equal(t, want.Location, got.Location)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.AllDay, got.AllDay)
		assert.NotEmpty(t, got.ExternalID)
	}
}

func TestRoundTripAllDayMidnightAligned(t *testing.T) {
	original := []model.CalendarEventExternal{
		{
			SourceID: "evt-1",
			Title:    "Férié",
			Start:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
			End:      time.Date(2026, 5, 2, 0, 0, 0, 0, time.Local),
			AllDay:   true,
		},
	}

	decoded := Decode(Encode(original, "Planning"), nil)
	require.Len(t, decoded, 1)
	got := decoded[0]
	assert.True(t, got.AllDay)
	assert.Equal(t, 0, got.Start.Hour())
	assert.Equal(t, 0, got.Start.Minute())
	assert.Equal(t, original[0].Start, got.Start)
}

func TestRoundTripEscapedCharacters(t *testing.T) {
	title := `a,b;c\d`
	original := []model.CalendarEventExternal{
		{
			SourceID: "evt-1",
			Title:    title,
			Start:    time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local),
			End:      time.Date(2026, 2, 10, 13, 0, 0, 0, time.Local),
		},
	}

	decoded := Decode(Encode(original, "Planning"), nil)
	require.Len(t, decoded, 1)
	assert.Equal(t, title, decoded[0].Title)
}

func TestFetcher(t *testing.T) {
	t.Run("returns body on 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleFeed))
		}))
		defer srv.Close()

		body, err := NewFetcher(0, nil).Fetch(t.Context(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, sampleFeed, body)
	})

	t.Run("non-2xx is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewFetcher(0, nil).Fetch(t.Context(), srv.URL)
		var terr *model.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusForbidden, terr.StatusCode)
	})

	t.Run("connection failure is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := NewFetcher(0, nil).Fetch(t.Context(), srv.URL)
		var terr *model.TransportError
		require.ErrorAs(t, err, &terr)
	})
}
