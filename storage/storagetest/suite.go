// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/repeatcal/event"
	"github.com/cyp0633/repeatcal/recurrence"
	"github.com/cyp0633/repeatcal/storage"
)

// NewForm builds a valid standalone form on the given day of November 2025.
func NewForm(title string, day int) event.Form {
	return event.Form{
		Title:            title,
		Date:             civil.Date{Year: 2025, Month: time.November, Day: day},
		StartTime:        event.Clock{Hour: 9},
		EndTime:          event.Clock{Hour: 10},
		Description:      "description of " + title,
		Location:         "office",
		Category:         event.CategoryWork,
		NotificationTime: 10,
	}
}

// NewSeries builds count daily members of one series starting November 1st 2025.
func NewSeries(seriesID, title string, count int) []event.Form {
	forms := make([]event.Form, 0, count)
	for i := 0; i < count; i++ {
		f := NewForm(title, 1+i)
		f.Repeat = recurrence.Descriptor{
			Cadence:  recurrence.Daily{Interval: 1},
			EndDate:  mo.Some(civil.Date{Year: 2025, Month: time.November, Day: count}),
			SeriesID: seriesID,
		}
		forms = append(forms, f)
	}
	return forms
}

// Run exercises a storage backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	ctx := context.Background()

	t.Run("create list get", func(t *testing.T) {
		store := newStore(t)

		created, err := store.CreateEvents(ctx, []event.Form{NewForm("late", 3), NewForm("early", 1)})
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.NotEmpty(t, created[0].ID)
		assert.NotEqual(t, created[0].ID, created[1].ID)
		assert.Equal(t, "late", created[0].Title)

		all, err := store.ListEvents(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "early", all[0].Title)

		got, err := store.GetEvent(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, created[0], *got)

		_, err = store.GetEvent(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("create nothing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateEvents(ctx, nil)
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
	})

	t.Run("update and delete one", func(t *testing.T) {
		store := newStore(t)
		created, err := store.CreateEvents(ctx, []event.Form{NewForm("one", 1)})
		require.NoError(t, err)

		ev := created[0]
		ev.Title = "renamed"
		ev.Date = civil.Date{Year: 2025, Month: time.November, Day: 20}
		updated, err := store.UpdateEvent(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, ev, updated)

		got, err := store.GetEvent(ctx, ev.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, 20, got.Date.Day)

		_, err = store.UpdateEvent(ctx, event.Event{ID: "missing", Form: NewForm("x", 1)})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.DeleteEvent(ctx, ev.ID))
		assert.ErrorIs(t, store.DeleteEvent(ctx, ev.ID), storage.ErrNotFound)
	})

	t.Run("update series", func(t *testing.T) {
		store := newStore(t)
		members, err := store.CreateEvents(ctx, NewSeries("s1", "standup", 3))
		require.NoError(t, err)
		others, err := store.CreateEvents(ctx, append(NewSeries("s2", "gym", 2), NewForm("lunch", 5)))
		require.NoError(t, err)

		updated, err := store.UpdateSeries(ctx, "s1", func(ev event.Event) (event.Event, error) {
			ev.Title = "sync"
			return ev, nil
		})
		require.NoError(t, err)
		require.Len(t, updated, 3)
		for i, ev := range updated {
			assert.Equal(t, "sync", ev.Title)
			assert.Equal(t, members[i].ID, ev.ID)
			assert.Equal(t, members[i].Date, ev.Date)
			assert.Equal(t, members[i].Repeat, ev.Repeat)
		}

		for _, other := range others {
			got, err := store.GetEvent(ctx, other.ID)
			require.NoError(t, err)
			assert.Equal(t, other, *got)
		}
	})

	t.Run("update unknown series", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateEvents(ctx, []event.Form{NewForm("standalone", 1)})
		require.NoError(t, err)

		_, err = store.UpdateSeries(ctx, "nope", func(ev event.Event) (event.Event, error) { return ev, nil })
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.UpdateSeries(ctx, "", func(ev event.Event) (event.Event, error) { return ev, nil })
		assert.ErrorIs(t, err, storage.ErrInvalidInput)
	})

	t.Run("failed series update changes nothing", func(t *testing.T) {
		store := newStore(t)
		members, err := store.CreateEvents(ctx, NewSeries("s1", "standup", 4))
		require.NoError(t, err)

		boom := errors.New("boom")
		calls := 0
		_, err = store.UpdateSeries(ctx, "s1", func(ev event.Event) (event.Event, error) {
			calls++
			if calls == 3 {
				return ev, boom
			}
			ev.Title = "half done"
			return ev, nil
		})
		assert.ErrorIs(t, err, boom)

		for _, member := range members {
			got, err := store.GetEvent(ctx, member.ID)
			require.NoError(t, err)
			assert.Equal(t, "standup", got.Title)
		}
	})

	t.Run("delete series", func(t *testing.T) {
		store := newStore(t)
		_, err := store.CreateEvents(ctx, NewSeries("s1", "standup", 3))
		require.NoError(t, err)
		kept, err := store.CreateEvents(ctx, []event.Form{NewForm("lunch", 2)})
		require.NoError(t, err)

		removed, err := store.DeleteSeries(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		removed, err = store.DeleteSeries(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)

		all, err := store.ListEvents(ctx)
		require.NoError(t, err)
		assert.Equal(t, kept, all)
	})
}
