package provider

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/foyerapp/calsync/internal/model"
)

const dateOnlyFormat = "2006-01-02"

// toExternalEvent converts a Google Calendar event to the provider-agnostic
// value. The second return is false when the entry has no usable start
// time; such entries are excluded from listings.
func toExternalEvent(item *calendar.Event) (model.CalendarEventExternal, bool) {
	ev := model.CalendarEventExternal{
		ExternalID:  item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}

	start, allDay, ok := parseEventTime(item.Start)
	if !ok {
		return model.CalendarEventExternal{}, false
	}
	ev.Start = start
	ev.AllDay = allDay

	if end, _, ok := parseEventTime(item.End); ok && !end.Before(start) {
		ev.End = end
	} else if allDay {
		ev.End = start.Add(24 * time.Hour)
	} else {
		ev.End = start.Add(time.Hour)
	}

	return ev, true
}

func parseEventTime(edt *calendar.EventDateTime) (time.Time, bool, bool) {
	if edt == nil {
		return time.Time{}, false, false
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, false, true
		}
		return time.Time{}, false, false
	}
	if edt.Date != "" {
		if t, err := time.ParseInLocation(dateOnlyFormat, edt.Date, time.Local); err == nil {
			return t, true, true
		}
	}
	return time.Time{}, false, false
}

// toAPIEvent converts an event for export, embedding the correlation key in
// the private extended properties.
func toAPIEvent(ev model.CalendarEventExternal, key string) *calendar.Event {
	apiEvent := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				correlationKeyProperty: key,
			},
		},
	}

	if ev.AllDay {
		apiEvent.Start = &calendar.EventDateTime{Date: ev.Start.Format(dateOnlyFormat)}
		apiEvent.End = &calendar.EventDateTime{Date: ev.End.Format(dateOnlyFormat)}
	} else {
		apiEvent.Start = &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)}
		apiEvent.End = &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339)}
	}

	return apiEvent
}
