// memory based implementation for testing and single-node deployments
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/storage"
)

// Store implements storage.Storage interface using an in-memory map
type Store struct {
	mu     sync.RWMutex
	events map[string]event.Event // key: event ID
	newID  func() string
}

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		events: make(map[string]event.Event),
		newID:  uuid.NewString,
	}
}

func (s *Store) ListEvents(_ context.Context) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]event.Event, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	storage.SortEvents(events)
	return events, nil
}

func (s *Store) GetEvent(_ context.Context, id string) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	return &ev, nil
}

func (s *Store) CreateEvents(_ context.Context, forms []event.Form) ([]event.Event, error) {
	if len(forms) == 0 {
		return nil, fmt.Errorf("no events to create: %w", storage.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]event.Event, 0, len(forms))
	for _, form := range forms {
		created = append(created, event.Event{ID: s.newID(), Form: form})
	}
	for _, ev := range created {
		s.events[ev.ID] = ev
	}
	return created, nil
}

func (s *Store) UpdateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[ev.ID]; !ok {
		return event.Event{}, fmt.Errorf("event %s: %w", ev.ID, storage.ErrNotFound)
	}
	s.events[ev.ID] = ev
	return ev, nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	delete(s.events, id)
	return nil
}

func (s *Store) UpdateSeries(_ context.Context, seriesID string, mutate storage.Mutation) ([]event.Event, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("empty series id: %w", storage.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// stage every member first so a failing mutation leaves the map untouched
	updated := make([]event.Event, 0)
	for _, ev := range s.events {
		if ev.SeriesID() != seriesID {
			continue
		}
		next, err := mutate(ev)
		if err != nil {
			return nil, err
		}
		next.ID = ev.ID
		updated = append(updated, next)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("series %s: %w", seriesID, storage.ErrNotFound)
	}

	for _, ev := range updated {
		s.events[ev.ID] = ev
	}
	storage.SortEvents(updated)
	return updated, nil
}

func (s *Store) DeleteSeries(_ context.Context, seriesID string) (int, error) {
	if seriesID == "" {
		return 0, fmt.Errorf("empty series id: %w", storage.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ev := range s.events {
		if ev.SeriesID() == seriesID {
			delete(s.events, id)
			removed++
		}
	}
	return removed, nil
}
