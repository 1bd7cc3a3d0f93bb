package storage

import (
	"context"
	"errors"

	"github.com/cyp0633/repeatcal/event"
)

// Storage connects the event API with a backend (e.g. database). Please use the
// error types provided.
//
// Every method is a single atomic step: a failed batch or series operation
// must leave every affected event as it was.
type Storage interface {
	// ListEvents returns every stored event ordered by date, then start time.
	ListEvents(ctx context.Context) ([]event.Event, error)
	// GetEvent finds one event by identifier.
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	// CreateEvents stores forms as new events and assigns their identifiers.
	// Either all of them are stored or none.
	CreateEvents(ctx context.Context, forms []event.Form) ([]event.Event, error)
	// UpdateEvent replaces the event with the same identifier.
	UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error)
	// DeleteEvent removes one event by identifier.
	DeleteEvent(ctx context.Context, id string) error
	// UpdateSeries applies mutate to every member of the series and stores the
	// results. Returns ErrNotFound when the series has no members.
	UpdateSeries(ctx context.Context, seriesID string, mutate Mutation) ([]event.Event, error)
	// DeleteSeries removes every member of the series and reports how many
	// were removed. An unknown series removes nothing and is not an error.
	DeleteSeries(ctx context.Context, seriesID string) (int, error)
}

// Mutation rewrites one series member. Returning an error aborts the whole
// series update.
type Mutation func(event.Event) (event.Event, error)

var (
	// ErrNotFound is returned when a requested event or series doesn't exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input parameters")
	// ErrStorageUnavailable is returned when the storage backend is unavailable
	ErrStorageUnavailable = errors.New("storage unavailable")
)
