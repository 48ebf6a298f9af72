package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foyerapp/calsync/internal/model"
)

// PostgresConfigStore persists configurations in the
// external_calendar_configs table.
type PostgresConfigStore struct {
	pool *pgxpool.Pool
}

// NewPostgresConfigStore creates a config store backed by the given pool.
func NewPostgresConfigStore(pool *pgxpool.Pool) *PostgresConfigStore {
	return &PostgresConfigStore{pool: pool}
}

const configColumns = `id, user_id, provider, name, calendar_id, ical_url,
	access_token, refresh_token, token_expiry, direction,
	sync_meals, sync_activities, sync_events, active, last_sync, version`

func (s *PostgresConfigStore) Create(ctx context.Context, cal *model.ExternalCalendarConfig) error {
	cal.Version = 1
	_, err := s.pool.Exec(ctx, `
		INSERT INTO external_calendar_configs (`+configColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		cal.ID, cal.UserID, string(cal.Provider), cal.Name, cal.CalendarID, cal.ICalURL,
		cal.AccessToken, cal.RefreshToken, nullableTime(cal), string(cal.Direction),
		cal.SyncMeals, cal.SyncActivities, cal.SyncEvents, cal.Active, nullableLastSync(cal), cal.Version,
	)
	if err != nil {
		return fmt.Errorf("insert config %s: %w", cal.ID, err)
	}
	return nil
}

func (s *PostgresConfigStore) Get(ctx context.Context, id string) (*model.ExternalCalendarConfig, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+configColumns+`
		FROM external_calendar_configs WHERE id = $1`, id)
	return scanConfig(row)
}

func (s *PostgresConfigStore) ListForUser(ctx context.Context, userID string) ([]*model.ExternalCalendarConfig, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+configColumns+`
		FROM external_calendar_configs WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list configs for user: %w", err)
	}
	defer rows.Close()

	var out []*model.ExternalCalendarConfig
	for rows.Next() {
		cal, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cal)
	}
	return out, rows.Err()
}

func (s *PostgresConfigStore) Save(ctx context.Context, cal *model.ExternalCalendarConfig) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE external_calendar_configs SET
			name = $2, calendar_id = $3, ical_url = $4,
			access_token = $5, refresh_token = $6, token_expiry = $7,
			direction = $8, sync_meals = $9, sync_activities = $10,
			sync_events = $11, active = $12, last_sync = $13,
			version = version + 1
		WHERE id = $1 AND version = $14`,
		cal.ID, cal.Name, cal.CalendarID, cal.ICalURL,
		cal.AccessToken, cal.RefreshToken, nullableTime(cal),
		string(cal.Direction), cal.SyncMeals, cal.SyncActivities,
		cal.SyncEvents, cal.Active, nullableLastSync(cal), cal.Version,
	)
	if err != nil {
		return fmt.Errorf("save config %s: %w", cal.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone else wrote it first.
		if _, err := s.Get(ctx, cal.ID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	cal.Version++
	return nil
}

func (s *PostgresConfigStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM external_calendar_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete config %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*model.ExternalCalendarConfig, error) {
	var (
		cal       model.ExternalCalendarConfig
		provider  string
		direction string
		expiry    *time.Time
		lastSync  *time.Time
	)
	err := row.Scan(
		&cal.ID, &cal.UserID, &provider, &cal.Name, &cal.CalendarID, &cal.ICalURL,
		&cal.AccessToken, &cal.RefreshToken, &expiry, &direction,
		&cal.SyncMeals, &cal.SyncActivities, &cal.SyncEvents, &cal.Active, &lastSync, &cal.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan config: %w", err)
	}
	cal.Provider = model.CalendarProvider(provider)
	cal.Direction = model.SyncDirection(direction)
	if expiry != nil {
		cal.TokenExpiry = *expiry
	}
	if lastSync != nil {
		cal.LastSync = *lastSync
	}
	return &cal, nil
}

// nullableTime maps a zero token expiry to NULL, keeping the "token and
// expiry both present or both absent" invariant visible in the row.
func nullableTime(cal *model.ExternalCalendarConfig) *time.Time {
	if cal.TokenExpiry.IsZero() {
		return nil
	}
	t := cal.TokenExpiry
	return &t
}

func nullableLastSync(cal *model.ExternalCalendarConfig) *time.Time {
	if cal.LastSync.IsZero() {
		return nil
	}
	t := cal.LastSync
	return &t
}

// PostgresEventRepository reads exportable household entities and upserts
// imported remote events in the household_events table.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates an event repository backed by the
// given pool.
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

func (r *PostgresEventRepository) FindForExport(ctx context.Context, userID string, sourceTypes []model.SourceType, window model.Window) ([]model.CalendarEventExternal, error) {
	types := make([]string, len(sourceTypes))
	for i, st := range sourceTypes {
		types[i] = string(st)
	}

	// import_key IS NULL keeps imported rows out of the export set; only
	// the household's own entities carry a source type and id.
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, COALESCE(description, ''), start_at, end_at,
		       COALESCE(location, ''), source_type, COALESCE(source_id, '')
		FROM household_events
		WHERE user_id = $1
		  AND import_key IS NULL
		  AND source_type = ANY($2)
		  AND start_at >= $3 AND start_at < $4
		ORDER BY start_at`,
		userID, types, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("find events for export: %w", err)
	}
	defer rows.Close()

	var out []model.CalendarEventExternal
	for rows.Next() {
		var (
			ev         model.CalendarEventExternal
			sourceType string
		)
		if err := rows.Scan(&ev.LocalID, &ev.Title, &ev.Description,
			&ev.Start, &ev.End, &ev.Location, &sourceType, &ev.SourceID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.SourceType = model.SourceType(sourceType)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *PostgresEventRepository) UpsertImported(ctx context.Context, userID string, ev model.CalendarEventExternal) error {
	// One statement per event keeps each import write atomic; the unique
	// index on (user_id, import_key) makes re-imports update in place.
	// Imported rows carry an empty source type and no source id, so they
	// never come back out of FindForExport.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO household_events
			(user_id, import_key, external_id, title, description,
			 start_at, end_at, all_day, location, source_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'')
		ON CONFLICT (user_id, import_key) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			all_day = EXCLUDED.all_day,
			location = EXCLUDED.location`,
		userID, importKey(ev), ev.ExternalID, ev.Title, ev.Description,
		ev.Start, ev.End, ev.AllDay, ev.Location)
	if err != nil {
		return fmt.Errorf("upsert imported event: %w", err)
	}
	return nil
}
