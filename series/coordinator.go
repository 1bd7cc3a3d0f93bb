// Package series implements whole-series edits and deletes of recurring events.
package series

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/civil"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/storage"
)

// ErrSeriesNotFound is returned when a series update matches no events
var ErrSeriesNotFound = errors.New("series not found")

// Coordinator applies series-scoped mutations through a storage backend. The
// backend performs each mutation as one atomic step.
type Coordinator struct {
	store  storage.Storage
	logger *slog.Logger
}

func NewCoordinator(store storage.Storage, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{store: store, logger: logger}
}

// UpdateSeries overwrites the fields present in patch on every member of the
// series. Identifiers, dates and recurrence descriptors are never touched. The
// update is rejected as a whole if any member would become invalid.
func (c *Coordinator) UpdateSeries(ctx context.Context, seriesID string, patch Patch) ([]event.Event, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("empty series id: %w", storage.ErrInvalidInput)
	}

	updated, err := c.store.UpdateSeries(ctx, seriesID, func(member event.Event) (event.Event, error) {
		next := Apply(member, patch)
		if err := next.Validate(); err != nil {
			return member, err
		}
		return next, nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		c.logger.Warn("series update matched no events", "series_id", seriesID)
		return nil, fmt.Errorf("%w: %s", ErrSeriesNotFound, seriesID)
	}
	if err != nil {
		c.logger.Error("series update failed", "series_id", seriesID, "error", err)
		return nil, err
	}

	c.logger.Info("series updated", "series_id", seriesID, "count", len(updated))
	return updated, nil
}

// DeleteSeries removes every member of the series. Deleting a series that no
// longer exists succeeds with a count of zero.
func (c *Coordinator) DeleteSeries(ctx context.Context, seriesID string) (int, error) {
	if seriesID == "" {
		return 0, fmt.Errorf("empty series id: %w", storage.ErrInvalidInput)
	}

	removed, err := c.store.DeleteSeries(ctx, seriesID)
	if err != nil {
		c.logger.Error("series delete failed", "series_id", seriesID, "error", err)
		return 0, err
	}

	c.logger.Info("series deleted", "series_id", seriesID, "count", removed)
	return removed, nil
}

// Expand turns one recurring form into one form per occurrence date, all
// sharing seriesID.
func Expand(form event.Form, dates []civil.Date, seriesID string) []event.Form {
	forms := make([]event.Form, 0, len(dates))
	for _, d := range dates {
		member := form
		member.Date = d
		member.Repeat = form.Repeat.WithSeries(seriesID)
		forms = append(forms, member)
	}
	return forms
}

// ReviseOccurrence merges a single-occurrence edit into the stored event. The
// identifier and the stored recurrence are kept unless the edit detaches the
// occurrence by setting its recurrence to none. Cadence, interval and end date
// only change through a series update.
func ReviseOccurrence(existing, incoming event.Event) event.Event {
	revised := incoming
	revised.ID = existing.ID
	if !incoming.Repeat.IsRecurring() {
		revised.Repeat = incoming.Repeat.Detached()
		return revised
	}
	revised.Repeat = existing.Repeat
	return revised
}
