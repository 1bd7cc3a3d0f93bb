package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/emersion/go-ical"

	"github.com/cyp0633/repeatcal/event"
)

const (
	propSeries = "X-REPEATCAL-SERIES"
	propRule   = "X-REPEATCAL-RRULE"

	floatingLayout = "20060102T150405"
)

// handleExport renders every stored event as one VEVENT. Series members are
// exported individually, so the rule they were expanded from is attached as an
// extension property instead of an RRULE.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if len(events) == 0 {
		s.logger.Debug("no events to export")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	cal, err := buildCalendar(events, s.productID, time.Now().UTC())
	if err != nil {
		s.respondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		s.respondError(w, fmt.Errorf("failed to encode calendar: %w", err))
		return
	}

	w.Header().Set(headerContentType, mimeTypeCalendar)
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	s.logger.Info("exported calendar", "count", len(events))
}

// seriesBounds holds the first date and the end bound of one series
type seriesBounds struct {
	first civil.Date
	until civil.Date
}

// buildCalendar expects events ordered by date, as Storage.ListEvents returns
// them.
func buildCalendar(events []event.Event, productID string, stamp time.Time) (*ical.Calendar, error) {
	bounds := make(map[string]seriesBounds)
	for _, ev := range events {
		id := ev.SeriesID()
		if id == "" || !ev.Repeat.IsRecurring() {
			continue
		}
		b, ok := bounds[id]
		if !ok {
			b.first = ev.Date
		}
		b.until = ev.Repeat.EndDate.OrElse(ev.Date)
		bounds[id] = b
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, ev := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, ev.ID)
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		vevent.Props.SetText(ical.PropSummary, ev.Title)
		vevent.Props.Set(floatingProp(ical.PropDateTimeStart, ev.StartTime.On(ev.Date, time.UTC)))
		vevent.Props.Set(floatingProp(ical.PropDateTimeEnd, ev.EndTime.On(ev.Date, time.UTC)))
		if ev.Description != "" {
			vevent.Props.SetText(ical.PropDescription, ev.Description)
		}
		if ev.Location != "" {
			vevent.Props.SetText(ical.PropLocation, ev.Location)
		}
		vevent.Props.SetText(ical.PropCategories, string(ev.Category))

		if b, ok := bounds[ev.SeriesID()]; ok {
			rule, err := ev.Repeat.RRule(b.first, b.until)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", ev.ID, err)
			}
			vevent.Props.SetText(propSeries, ev.SeriesID())
			vevent.Props.SetText(propRule, rule)
		}

		if ev.NotificationTime > 0 {
			vevent.Children = append(vevent.Children, alarm(ev))
		}
		cal.Children = append(cal.Children, vevent.Component)
	}
	return cal, nil
}

// floatingProp builds a DATE-TIME property without a time zone, since event
// times are wall-clock times.
func floatingProp(name string, t time.Time) *ical.Prop {
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDateTime)
	prop.Value = t.Format(floatingLayout)
	return prop
}

func alarm(ev event.Event) *ical.Component {
	valarm := ical.NewComponent(ical.CompAlarm)
	valarm.Props.SetText(ical.PropAction, "DISPLAY")
	valarm.Props.SetText(ical.PropDescription, ev.Title)

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.SetValueType(ical.ValueDuration)
	trigger.Value = fmt.Sprintf("-PT%dM", ev.NotificationTime)
	valarm.Props.Set(trigger)
	return valarm
}
