package storage

import (
	"sort"

	"github.com/cyp0633/repeatcal/event"
)

// SortEvents orders events by date, then start time, then identifier.
func SortEvents(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
}
