package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/foyerapp/calsync/internal/logging"
	"github.com/foyerapp/calsync/internal/model"
)

// correlationKeyProperty is the private extended property under which the
// household correlation key is stored on exported events.
const correlationKeyProperty = "foyerSourceKey"

// primaryCalendarID is used when the config does not name a calendar.
const primaryCalendarID = "primary"

// Client wraps the Google Calendar service for one linked calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// NewClient creates a Calendar client authorized with the config's current
// access token. The token source is static on purpose: rotation is handled
// explicitly by the token manager so the rotated pair can be persisted
// before first use. Extra options are appended for tests (endpoint,
// custom HTTP client).
func NewClient(ctx context.Context, cal *model.ExternalCalendarConfig, timeout time.Duration, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cal.AccessToken,
		TokenType:   "Bearer",
	})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout

	// Force HTTP/1.1 by disabling HTTP/2
	transport := httpClient.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	allOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := calendar.NewService(ctx, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	calendarID := cal.CalendarID
	if calendarID == "" {
		calendarID = primaryCalendarID
	}

	return &Client{
		svc:        svc,
		calendarID: calendarID,
		logger:     logging.WithConfig(logger, cal.ID, string(cal.Provider)),
	}, nil
}

// CorrelationKey derives the application key embedded in exported events,
// used to re-find them on later passes.
func CorrelationKey(sourceType model.SourceType, sourceID string) string {
	return fmt.Sprintf("%s:%s", sourceType, sourceID)
}

// FindByCorrelationKey looks up a previously exported event by its
// correlation key. It returns nil both when no event matches and when the
// lookup itself fails; a failed lookup is logged and only costs dedup for
// this item.
func (c *Client) FindByCorrelationKey(ctx context.Context, key string) *model.CalendarEventExternal {
	list, err := c.svc.Events.List(c.calendarID).
		PrivateExtendedProperty(correlationKeyProperty + "=" + key).
		MaxResults(1).
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		c.logger.Warn("correlation key lookup failed", logging.Err(err), "key", key)
		return nil
	}
	if len(list.Items) == 0 {
		return nil
	}

	ev, ok := toExternalEvent(list.Items[0])
	if !ok {
		return nil
	}
	return &ev
}

// CreateOrUpdate exports one event: if a remote event carries the same
// correlation key it is updated in place, otherwise a new one is created.
// It returns the remote event id and whether an existing event was
// updated rather than created.
func (c *Client) CreateOrUpdate(ctx context.Context, ev model.CalendarEventExternal) (string, bool, error) {
	key := CorrelationKey(ev.SourceType, ev.SourceID)
	apiEvent := toAPIEvent(ev, key)

	if existing := c.FindByCorrelationKey(ctx, key); existing != nil {
		updated, err := c.svc.Events.Patch(c.calendarID, existing.ExternalID, apiEvent).
			Context(ctx).
			Do()
		if err != nil {
			return "", false, &model.TransportError{Op: "update remote event", Err: err}
		}
		c.logger.Debug("remote event updated", "external_id", updated.Id, "key", key)
		return updated.Id, true, nil
	}

	created, err := c.svc.Events.Insert(c.calendarID, apiEvent).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, &model.TransportError{Op: "create remote event", Err: err}
	}
	c.logger.Debug("remote event created", "external_id", created.Id, "key", key)
	return created.Id, false, nil
}

// ListEvents fetches remote events inside the window. Entries without a
// start time are silently excluded, mirroring the feed parser's permissive
// policy.
func (c *Client) ListEvents(ctx context.Context, window model.Window) ([]model.CalendarEventExternal, error) {
	call := c.svc.Events.List(c.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !window.From.IsZero() {
		call = call.TimeMin(window.From.Format(time.RFC3339))
	}
	if !window.To.IsZero() {
		call = call.TimeMax(window.To.Format(time.RFC3339))
	}

	list, err := call.Do()
	if err != nil {
		return nil, &model.TransportError{Op: "list remote events", Err: err}
	}

	events := make([]model.CalendarEventExternal, 0, len(list.Items))
	for _, item := range list.Items {
		ev, ok := toExternalEvent(item)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
