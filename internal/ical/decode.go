package ical

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foyerapp/calsync/internal/model"
)

// PlaceholderTitle is assigned to decoded events lacking a SUMMARY.
const PlaceholderTitle = "Sans titre"

// Decode parses a whole VCALENDAR document into events. VEVENT blocks
// without a usable DTSTART are logged and dropped; everything else in the
// document keeps parsing. Decode never fails on malformed event content,
// only returns fewer events.
func Decode(text string, logger *slog.Logger) []model.CalendarEventExternal {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		events  []model.CalendarEventExternal
		current map[string]property
		inEvent bool
		skipped int
	)

	for _, line := range unfold(text) {
		switch {
		case line == "BEGIN:VEVENT":
			current = make(map[string]property)
			inEvent = true
		case line == "END:VEVENT":
			if !inEvent {
				continue
			}
			inEvent = false
			ev, err := buildEvent(current)
			if err != nil {
				skipped++
				logger.Warn("skipping malformed VEVENT", "reason", err.Error())
				continue
			}
			events = append(events, ev)
		case inEvent:
			if name, prop, ok := parseProperty(line); ok {
				current[name] = prop
			}
		}
	}

	if skipped > 0 {
		logger.Info("ical decode finished with skipped blocks",
			"decoded", len(events), "skipped", skipped)
	}
	return events
}

// property is one content line split into parameters and value.
type property struct {
	params map[string]string
	value  string
}

// parseProperty splits "NAME;PARAM=V:value" into its parts. Lines without
// a colon are not valid content lines and are ignored.
func parseProperty(line string) (string, property, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", property{}, false
	}
	head, value := line[:idx], line[idx+1:]

	parts := strings.Split(head, ";")
	name := strings.ToUpper(strings.TrimSpace(parts[0]))
	if name == "" {
		return "", property{}, false
	}

	params := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		if eq := strings.Index(p, "="); eq > 0 {
			params[strings.ToUpper(p[:eq])] = p[eq+1:]
		}
	}
	return name, property{params: params, value: value}, true
}

func buildEvent(props map[string]property) (model.CalendarEventExternal, error) {
	var ev model.CalendarEventExternal

	start, ok := props["DTSTART"]
	if !ok {
		return ev, fmt.Errorf("missing DTSTART")
	}
	startTime, allDay, err := parseDateTime(start)
	if err != nil {
		return ev, fmt.Errorf("bad DTSTART %q: %w", start.value, err)
	}
	ev.Start = startTime
	ev.AllDay = allDay

	if end, ok := props["DTEND"]; ok {
		endTime, _, err := parseDateTime(end)
		if err == nil && !endTime.Before(ev.Start) {
			ev.End = endTime
		}
	}
	if ev.End.IsZero() {
		// Feeds may omit DTEND; keep end >= start with a sensible span.
		if ev.AllDay {
			ev.End = ev.Start.Add(24 * time.Hour)
		} else {
			ev.End = ev.Start.Add(time.Hour)
		}
	}

	if p, ok := props["UID"]; ok {
		ev.ExternalID = p.value
	}
	ev.Title = PlaceholderTitle
	if p, ok := props["SUMMARY"]; ok && p.value != "" {
		ev.Title = unescapeText(p.value)
	}
	if p, ok := props["DESCRIPTION"]; ok {
		ev.Description = unescapeText(p.value)
	}
	if p, ok := props["LOCATION"]; ok {
		ev.Location = unescapeText(p.value)
	}

	return ev, nil
}

// parseDateTime accepts the three date forms the engine emits or meets in
// the wild: a bare 8-digit date (all-day), a naive local datetime, and a
// UTC datetime with trailing Z.
func parseDateTime(p property) (time.Time, bool, error) {
	v := strings.TrimSpace(p.value)

	if p.params["VALUE"] == "DATE" || len(v) == len(dateFormat) {
		t, err := time.ParseInLocation(dateFormat, v, time.Local)
		return t, true, err
	}
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(dateTimeUTCFormat, v)
		return t, false, err
	}
	t, err := time.ParseInLocation(dateTimeLocalFormat, v, time.Local)
	return t, false, err
}

// unfold normalizes line endings and joins folded continuation lines
// (lines starting with a space or tab belong to the previous line).
func unfold(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if len(l) > 0 && (l[0] == ' ' || l[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += l[1:]
			continue
		}
		lines = append(lines, strings.TrimRight(l, "\r"))
	}
	return lines
}

// unescapeText reverses escapeText. Unknown escape sequences keep the
// escaped character, matching the permissive decode policy.
func unescapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '\\' || i+1 == len(text) {
			b.WriteByte(text[i])
			continue
		}
		i++
		switch text[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
