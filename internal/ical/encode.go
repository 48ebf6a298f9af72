package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foyerapp/calsync/internal/model"
)

const (
	prodID    = "-//FoyerApp//calsync//FR"
	uidDomain = "calsync.foyer.app"

	dateTimeLocalFormat = "20060102T150405"
	dateTimeUTCFormat   = "20060102T150405Z"
	dateFormat          = "20060102"
)

// Category labels attached to exported events, by source type.
const (
	categoryMeal     = "Repas"
	categoryActivity = "Activité Familiale"
)

// Encode serializes events into a VCALENDAR document named calendarName.
// Output is deterministic for a given input, aside from DTSTAMP.
func Encode(events []model.CalendarEventExternal, calendarName string) string {
	var b strings.Builder

	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:" + prodID + "\r\n")
	b.WriteString("X-WR-CALNAME:" + escapeText(calendarName) + "\r\n")

	now := time.Now().UTC()
	for i := range events {
		writeEvent(&b, &events[i], now)
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func writeEvent(b *strings.Builder, ev *model.CalendarEventExternal, now time.Time) {
	b.WriteString("BEGIN:VEVENT\r\n")
	b.WriteString("UID:" + eventUID(ev) + "\r\n")
	b.WriteString("DTSTAMP:" + now.Format(dateTimeUTCFormat) + "\r\n")

	if ev.AllDay {
		b.WriteString("DTSTART;VALUE=DATE:" + ev.Start.Format(dateFormat) + "\r\n")
		b.WriteString("DTEND;VALUE=DATE:" + ev.End.Format(dateFormat) + "\r\n")
	} else {
		b.WriteString("DTSTART:" + ev.Start.Format(dateTimeLocalFormat) + "\r\n")
		b.WriteString("DTEND:" + ev.End.Format(dateTimeLocalFormat) + "\r\n")
	}

	b.WriteString("SUMMARY:" + escapeText(ev.Title) + "\r\n")
	if ev.Description != "" {
		b.WriteString("DESCRIPTION:" + escapeText(ev.Description) + "\r\n")
	}
	if ev.Location != "" {
		b.WriteString("LOCATION:" + escapeText(ev.Location) + "\r\n")
	}
	if cat := categoryFor(ev.SourceType); cat != "" {
		b.WriteString("CATEGORIES:" + escapeText(cat) + "\r\n")
	}

	b.WriteString("END:VEVENT\r\n")
}

// eventUID returns the event's external id when it has one; otherwise a
// UID derived from the local entity under a fixed domain, falling back to
// a random one for events with no identity at all.
func eventUID(ev *model.CalendarEventExternal) string {
	if ev.ExternalID != "" {
		return ev.ExternalID
	}
	local := ev.SourceID
	if local == "" {
		local = ev.LocalID
	}
	if local == "" {
		local = uuid.NewString()
	}
	return fmt.Sprintf("%s@%s", local, uidDomain)
}

func categoryFor(st model.SourceType) string {
	switch st {
	case model.SourceMeal:
		return categoryMeal
	case model.SourceActivity:
		return categoryActivity
	}
	return ""
}

// escapeText escapes the characters RFC 5545 §3.3.11 reserves in TEXT
// property values.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ";", "\\;")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, "\n", "\\n")
	return text
}
