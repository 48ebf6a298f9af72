package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/foyerapp/calsync/internal/model"
)

// MemoryConfigStore is a mutex-guarded in-memory ConfigStore.
type MemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[string]model.ExternalCalendarConfig
}

// NewMemoryConfigStore creates an empty in-memory config store.
func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{configs: make(map[string]model.ExternalCalendarConfig)}
}

func (s *MemoryConfigStore) Create(ctx context.Context, cal *model.ExternalCalendarConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[cal.ID]; ok {
		return fmt.Errorf("config %s already exists", cal.ID)
	}
	cal.Version = 1
	s.configs[cal.ID] = *cal
	return nil
}

func (s *MemoryConfigStore) Get(ctx context.Context, id string) (*model.ExternalCalendarConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cal, ok := s.configs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cal
	return &out, nil
}

func (s *MemoryConfigStore) ListForUser(ctx context.Context, userID string) ([]*model.ExternalCalendarConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.ExternalCalendarConfig
	for _, cal := range s.configs {
		if cal.UserID == userID {
			c := cal
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *MemoryConfigStore) Save(ctx context.Context, cal *model.ExternalCalendarConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.configs[cal.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != cal.Version {
		return ErrVersionConflict
	}
	cal.Version++
	s.configs[cal.ID] = *cal
	return nil
}

func (s *MemoryConfigStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[id]; !ok {
		return ErrNotFound
	}
	delete(s.configs, id)
	return nil
}

// MemoryEventRepository is an in-memory LocalEventRepository. Local
// entities are seeded with AddLocal; imported events are keyed by external
// id (else title+start) so re-imports update in place.
type MemoryEventRepository struct {
	mu       sync.RWMutex
	local    map[string][]model.CalendarEventExternal
	imported map[string]map[string]model.CalendarEventExternal

	// FailUpserts makes the next n UpsertImported calls fail, for
	// partial-failure tests.
	FailUpserts int
}

// NewMemoryEventRepository creates an empty in-memory event repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		local:    make(map[string][]model.CalendarEventExternal),
		imported: make(map[string]map[string]model.CalendarEventExternal),
	}
}

// AddLocal seeds one local entity for a user.
func (r *MemoryEventRepository) AddLocal(userID string, ev model.CalendarEventExternal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[userID] = append(r.local[userID], ev)
}

func (r *MemoryEventRepository) FindForExport(ctx context.Context, userID string, sourceTypes []model.SourceType, window model.Window) ([]model.CalendarEventExternal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[model.SourceType]bool, len(sourceTypes))
	for _, st := range sourceTypes {
		wanted[st] = true
	}

	var out []model.CalendarEventExternal
	for _, ev := range r.local[userID] {
		if wanted[ev.SourceType] && window.Contains(ev.Start) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *MemoryEventRepository) UpsertImported(ctx context.Context, userID string, ev model.CalendarEventExternal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailUpserts > 0 {
		r.FailUpserts--
		return fmt.Errorf("simulated write failure")
	}

	byKey := r.imported[userID]
	if byKey == nil {
		byKey = make(map[string]model.CalendarEventExternal)
		r.imported[userID] = byKey
	}
	byKey[importKey(ev)] = ev
	return nil
}

// ImportedForUser returns the imported events stored for a user, for
// assertions in tests and for the CLI listing.
func (r *MemoryEventRepository) ImportedForUser(userID string) []model.CalendarEventExternal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.CalendarEventExternal, 0, len(r.imported[userID]))
	for _, ev := range r.imported[userID] {
		out = append(out, ev)
	}
	return out
}

func importKey(ev model.CalendarEventExternal) string {
	if ev.ExternalID != "" {
		return "uid:" + ev.ExternalID
	}
	return "tt:" + ev.Title + "|" + ev.Start.UTC().Format(time.RFC3339)
}
