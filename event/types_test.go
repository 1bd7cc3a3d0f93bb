package event

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/repeatcal/recurrence"
)

func validForm() Form {
	return Form{
		Title:            "Standup",
		Date:             civil.Date{Year: 2025, Month: time.October, Day: 1},
		StartTime:        Clock{Hour: 9},
		EndTime:          Clock{Hour: 10},
		Description:      "daily sync",
		Location:         "room 3",
		Category:         CategoryWork,
		NotificationTime: 10,
	}
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Form)
		wantErr bool
	}{
		{name: "valid", mutate: func(f *Form) {}},
		{name: "valid series member", mutate: func(f *Form) {
			f.Repeat = recurrence.Descriptor{Cadence: recurrence.Weekly{Interval: 1}, SeriesID: "s1"}
		}},
		{name: "empty title", mutate: func(f *Form) { f.Title = "" }, wantErr: true},
		{name: "end equals start", mutate: func(f *Form) { f.EndTime = f.StartTime }, wantErr: true},
		{name: "end before start", mutate: func(f *Form) { f.EndTime = Clock{Hour: 8, Minute: 59} }, wantErr: true},
		{name: "unknown category", mutate: func(f *Form) { f.Category = "hobby" }, wantErr: true},
		{name: "negative notification", mutate: func(f *Form) { f.NotificationTime = -1 }, wantErr: true},
		{name: "invalid date", mutate: func(f *Form) { f.Date = civil.Date{Year: 2025, Month: time.February, Day: 30} }, wantErr: true},
		{name: "standalone with series id", mutate: func(f *Form) {
			f.Repeat = recurrence.Descriptor{SeriesID: "s1"}
		}, wantErr: true},
		{name: "zero interval", mutate: func(f *Form) {
			f.Repeat = recurrence.Descriptor{Cadence: recurrence.Daily{Interval: 0}}
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvent_JSON(t *testing.T) {
	raw := `{
		"id": "42",
		"title": "Gym",
		"date": "2025-11-03",
		"startTime": "18:30",
		"endTime": "19:45",
		"description": "",
		"location": "downtown",
		"category": "개인",
		"repeat": {"type": "weekly", "interval": 1, "endDate": "2025-12-01", "id": "series-1"},
		"notificationTime": 60
	}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.Equal(t, "42", ev.ID)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.November, Day: 3}, ev.Date)
	assert.Equal(t, Clock{Hour: 18, Minute: 30}, ev.StartTime)
	assert.Equal(t, CategoryPersonal, ev.Category)
	assert.Equal(t, "series-1", ev.SeriesID())
	assert.Equal(t, mo.Some(civil.Date{Year: 2025, Month: time.December, Day: 1}), ev.Repeat.EndDate)
	require.NoError(t, ev.Validate())

	out, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestClock(t *testing.T) {
	c, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 7, Minute: 5}, c)
	assert.Equal(t, "07:05", c.String())
	assert.True(t, c.Before(Clock{Hour: 7, Minute: 6}))

	_, err = ParseClock("7pm")
	assert.Error(t, err)
	_, err = ParseClock("24:00")
	assert.Error(t, err)

	at := c.On(civil.Date{Year: 2025, Month: time.March, Day: 2}, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 2, 7, 5, 0, 0, time.UTC), at)
}
