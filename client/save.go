package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/mo"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/internal/httpclient"
	"github.com/cyp0633/repeatcal/recurrence"
	"github.com/cyp0633/repeatcal/series"
)

type createEventsRequest struct {
	Events []event.Form `json:"events"`
}

// Save persists ev. When editing, ev replaces the stored occurrence with the
// same identifier and no dates are generated. Otherwise a non-repeating form is
// created on its own and a repeating form is expanded into one event per
// occurrence, all created in one request under a new series identifier.
func (o *Operations) Save(ctx context.Context, ev event.Event, editing bool) error {
	var err error
	if editing {
		err = o.update(ctx, ev)
	} else if ev.Repeat.IsRecurring() {
		err = o.createSeries(ctx, ev.Form)
	} else {
		err = o.create(ctx, ev.Form)
	}
	if err != nil {
		return err
	}

	o.refresh(ctx)
	o.onSave()
	msg := MsgAdded
	if editing {
		msg = MsgUpdated
	}
	o.notifier.Notify(Notice{Level: LevelSuccess, Message: msg})
	return nil
}

func (o *Operations) update(ctx context.Context, ev event.Event) error {
	if err := ev.Validate(); err != nil {
		return o.saveFailed(err)
	}

	err := o.http.DoPUT(ctx, eventPath(ev.ID), ev, nil)
	if errors.Is(err, httpclient.ErrNotFound) {
		err = fmt.Errorf("%w: %s: %w", ErrOccurrenceGone, ev.ID, err)
	}
	if err != nil {
		return o.saveFailed(err)
	}
	o.logger.Info("updated event", "event_id", ev.ID)
	return nil
}

func (o *Operations) create(ctx context.Context, form event.Form) error {
	if err := form.Validate(); err != nil {
		return o.saveFailed(err)
	}
	if err := o.http.DoPOST(ctx, eventsPath, form, nil); err != nil {
		return o.saveFailed(err)
	}
	o.logger.Info("created event", "date", form.Date)
	return nil
}

func (o *Operations) createSeries(ctx context.Context, form event.Form) error {
	if err := recurrence.ValidateEndDate(form.Date, form.Repeat.EndDate); err != nil {
		o.notifier.Notify(Notice{Level: LevelError, Message: err.Error()})
		return err
	}

	// members carry the bound they were generated under
	end := form.Repeat.EndDate.OrElse(o.engine.DefaultEndDate(form.Date))
	form.Repeat.EndDate = mo.Some(end)

	if err := form.Validate(); err != nil {
		return o.saveFailed(err)
	}

	dates, err := o.engine.Generate(form.Date, form.Repeat)
	if err != nil {
		return o.saveFailed(err)
	}
	if len(dates) == 0 {
		return o.saveFailed(fmt.Errorf("%w: %s is after the horizon", ErrNoOccurrences, form.Date))
	}

	seriesID := o.newSeriesID()
	forms := series.Expand(form, dates, seriesID)
	if err := o.http.DoPOST(ctx, eventsListPath, createEventsRequest{Events: forms}, nil); err != nil {
		return o.saveFailed(err)
	}
	o.logger.Info("created series", "series_id", seriesID, "count", len(forms))
	return nil
}

func (o *Operations) saveFailed(err error) error {
	o.logger.Error("failed to save event", "error", err)
	o.notifier.Notify(Notice{Level: LevelError, Message: MsgSaveFailed})
	return err
}
