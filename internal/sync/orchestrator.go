package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foyerapp/calsync/internal/ical"
	"github.com/foyerapp/calsync/internal/logging"
	"github.com/foyerapp/calsync/internal/model"
)

// State names the steps of one sync pass.
type State string

const (
	StateIdle       State = "idle"
	StateTokenCheck State = "token_check"
	StateImporting  State = "importing"
	StateExporting  State = "exporting"
	StateMerging    State = "merging"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// pass carries the mutable state of one orchestrator invocation.
type pass struct {
	engine    *Engine
	cal       *model.ExternalCalendarConfig
	direction model.SyncDirection
	window    model.Window
	result    *model.SyncResult
	state     State
	logger    *slog.Logger
	client    ProviderClient // built lazily after the token check
}

// runPass loads the configuration and walks it through the state machine.
// directionOverride, when non-empty, replaces the configured direction
// (used by ImportFromICalURL).
func (e *Engine) runPass(ctx context.Context, configID string, directionOverride model.SyncDirection) *model.SyncResult {
	started := e.clock()
	result := &model.SyncResult{}

	cal, err := e.configs.Get(ctx, configID)
	if err != nil {
		result.AddError(fmt.Sprintf("load configuration %s: %v", configID, err))
		result.Finalize(e.clock().Sub(started))
		result.Message = "configuration introuvable"
		return result
	}

	if !cal.Active {
		result.Finalize(e.clock().Sub(started))
		result.Message = "calendrier inactif, synchronisation ignorée"
		return result
	}

	direction := cal.Direction
	if directionOverride != "" {
		direction = directionOverride
	}

	p := &pass{
		engine:    e,
		cal:       cal,
		direction: direction,
		window:    e.passWindow(started),
		result:    result,
		state:     StateIdle,
		logger:    logging.WithConfig(e.logger, cal.ID, string(cal.Provider)),
	}

	p.logger.Info("sync pass started", logging.Operation("run_sync"),
		slog.String(logging.KeyDirection, string(direction)))

	p.run(ctx)

	elapsed := e.clock().Sub(started)
	result.Finalize(elapsed)
	if p.state == StateFailed {
		result.Success = false
	}
	recordPass(string(cal.Provider), result.Success,
		result.Imported, result.Exported, len(result.Errors), elapsed.Seconds())

	p.logger.Info("sync pass finished",
		logging.Status(passStatus(result.Success)),
		slog.Int("imported", result.Imported),
		slog.Int("exported", result.Exported),
		slog.Int("updated", result.Updated),
		slog.Int("errors", len(result.Errors)),
		slog.Duration(logging.KeyDuration, elapsed))
	return result
}

func passStatus(success bool) string {
	if success {
		return logging.StatusSuccess
	}
	return logging.StatusError
}

// run advances the pass through its states. Token-check failure is the
// only early exit; import and export accumulate per-item errors and keep
// going.
func (p *pass) run(ctx context.Context) {
	p.state = StateTokenCheck
	if !p.tokenCheck(ctx) {
		p.state = StateFailed
		return
	}

	if p.direction.Imports() {
		p.state = StateImporting
		p.importEvents(ctx)
	}
	if p.direction.Exports() {
		p.state = StateExporting
		p.exportEvents(ctx)
	}

	p.state = StateMerging
	p.merge(ctx)
	p.state = StateDone
}

// tokenCheck refreshes an expired or missing access token and persists
// the rotated pair before it is used. Feed configurations skip this state
// entirely.
func (p *pass) tokenCheck(ctx context.Context) bool {
	if !p.cal.Provider.RequiresOAuth() {
		return true
	}
	if !p.engine.tokens.NeedsRefresh(p.cal, p.engine.clock()) {
		return true
	}

	if err := p.engine.tokens.Refresh(ctx, p.cal); err != nil {
		p.result.AddError(fmt.Sprintf("token refresh: %v", err))
		return false
	}
	// Rotation must be durable before the new token is used; a refresh
	// token may be single-use on the provider side.
	if err := p.engine.configs.Save(ctx, p.cal); err != nil {
		p.result.AddError(fmt.Sprintf("persist rotated token: %v", err))
		return false
	}
	return true
}

// importEvents pulls remote events (REST listing or feed fetch+decode)
// and upserts each into the local repository. Every failure is one error
// entry scoped to its item or to the fetch.
func (p *pass) importEvents(ctx context.Context) {
	var (
		remote []model.CalendarEventExternal
		err    error
	)

	if !p.cal.Provider.RequiresOAuth() {
		// Apple, Outlook and plain iCal URLs are all feed-backed.
		var body string
		body, err = p.engine.fetcher.Fetch(ctx, p.cal.ICalURL)
		if err == nil {
			remote = ical.Decode(body, p.logger)
		}
	} else {
		client, cerr := p.providerClient(ctx)
		if cerr != nil {
			err = cerr
		} else {
			remote, err = client.ListEvents(ctx, p.window)
		}
	}
	if err != nil {
		p.result.AddError(fmt.Sprintf("import: %v", err))
		return
	}

	for _, ev := range remote {
		if ev.Title == "" {
			ev.Title = ical.PlaceholderTitle
		}
		if err := p.engine.events.UpsertImported(ctx, p.cal.UserID, ev); err != nil {
			p.result.AddError(fmt.Sprintf("import %q: %v",
				ev.Title, &model.PersistenceError{Op: "upsert imported event", Err: err}))
			continue
		}
		p.result.Imported++
	}
}

// exportEvents pushes local entities matching the source-type toggles to
// the remote calendar, one CreateOrUpdate per entity. Feed-backed
// calendars (Apple, Outlook, iCal URLs) are a read-only fallback and
// export nothing.
func (p *pass) exportEvents(ctx context.Context) {
	if !p.cal.Provider.RequiresOAuth() {
		p.logger.Debug("feed calendar is read-only, skipping export")
		return
	}

	types := p.exportSourceTypes()
	if len(types) == 0 {
		return
	}

	local, err := p.engine.events.FindForExport(ctx, p.cal.UserID, types, p.window)
	if err != nil {
		p.result.AddError(fmt.Sprintf("export: %v",
			&model.PersistenceError{Op: "load local events", Err: err}))
		return
	}

	client, err := p.providerClient(ctx)
	if err != nil {
		p.result.AddError(fmt.Sprintf("export: %v", err))
		return
	}

	for _, ev := range local {
		_, updated, err := client.CreateOrUpdate(ctx, ev)
		if err != nil {
			p.result.AddError(fmt.Sprintf("export %q: %v", ev.Title, err))
			continue
		}
		p.result.Exported++
		if updated {
			p.result.Updated++
		}
	}
}

func (p *pass) exportSourceTypes() []model.SourceType {
	var types []model.SourceType
	if p.cal.SyncMeals {
		types = append(types, model.SourceMeal)
	}
	if p.cal.SyncActivities {
		types = append(types, model.SourceActivity)
	}
	if p.cal.SyncEvents {
		types = append(types, model.SourceGeneric)
	}
	return types
}

// merge records the pass on the configuration: last-sync time plus any
// token fields rotated earlier. The optimistic save keeps a concurrent
// writer's rotation from being clobbered.
func (p *pass) merge(ctx context.Context) {
	p.cal.LastSync = p.engine.clock()
	if err := p.engine.configs.Save(ctx, p.cal); err != nil {
		p.result.AddError(fmt.Sprintf("persist sync state: %v", err))
	}
}

// providerClient builds the REST client once per pass.
func (p *pass) providerClient(ctx context.Context) (ProviderClient, error) {
	if p.client != nil {
		return p.client, nil
	}
	client, err := p.engine.newProvider(ctx, p.cal)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}
