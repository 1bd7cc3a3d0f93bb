package recurrence

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
)

// Kind is the wire name of a recurrence cadence
type Kind string

const (
	KindNone    Kind = "none"
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
)

// Cadence is one recurrence variant. The set of variants is closed: Daily,
// Weekly, Monthly and Yearly. A nil Cadence means the event does not repeat.
type Cadence interface {
	Kind() Kind
	Every() int

	// nth returns the n-th candidate counted from origin. ok is false when the
	// candidate does not exist on the calendar. floor is the earliest date the
	// candidate could fall on and never decreases as n grows.
	nth(origin civil.Date, n int) (candidate, floor civil.Date, ok bool)
}

// Daily repeats every Interval days
type Daily struct{ Interval int }

// Weekly repeats every Interval weeks
type Weekly struct{ Interval int }

// Monthly repeats on the origin day-of-month every Interval months. Months
// without that day are skipped.
type Monthly struct{ Interval int }

// Yearly repeats on the origin month and day every Interval years. February 29
// only recurs in leap years.
type Yearly struct{ Interval int }

func (c Daily) Kind() Kind   { return KindDaily }
func (c Weekly) Kind() Kind  { return KindWeekly }
func (c Monthly) Kind() Kind { return KindMonthly }
func (c Yearly) Kind() Kind  { return KindYearly }

func (c Daily) Every() int   { return c.Interval }
func (c Weekly) Every() int  { return c.Interval }
func (c Monthly) Every() int { return c.Interval }
func (c Yearly) Every() int  { return c.Interval }

// maxSpanYears bounds how far from its origin a candidate is computed. Civil
// dates carry four-digit years, so every end bound lies within it.
const maxSpanYears = 10000

// beyond sorts after every end bound and stands in for a candidate whose
// offset would not fit in maxSpanYears.
var beyond = civil.Date{Year: math.MaxInt32, Month: time.December, Day: 31}

// offset returns n*interval, or false once it exceeds limit.
func offset(n, interval, limit int) (int, bool) {
	if n > limit/interval {
		return 0, false
	}
	return n * interval, true
}

func (c Daily) nth(origin civil.Date, n int) (civil.Date, civil.Date, bool) {
	days, ok := offset(n, c.Interval, maxSpanYears*366)
	if !ok {
		return civil.Date{}, beyond, false
	}
	d := origin.AddDays(days)
	return d, d, true
}

func (c Weekly) nth(origin civil.Date, n int) (civil.Date, civil.Date, bool) {
	weeks, ok := offset(n, c.Interval, maxSpanYears*53)
	if !ok {
		return civil.Date{}, beyond, false
	}
	d := origin.AddDays(weeks * 7)
	return d, d, true
}

func (c Monthly) nth(origin civil.Date, n int) (civil.Date, civil.Date, bool) {
	step, ok := offset(n, c.Interval, maxSpanYears*12)
	if !ok {
		return civil.Date{}, beyond, false
	}
	months := int(origin.Month) - 1 + step
	year := origin.Year + months/12
	month := time.Month(months%12 + 1)

	floor := civil.Date{Year: year, Month: month, Day: 1}
	if origin.Day > daysIn(year, month) {
		return civil.Date{}, floor, false
	}
	return civil.Date{Year: year, Month: month, Day: origin.Day}, floor, true
}

func (c Yearly) nth(origin civil.Date, n int) (civil.Date, civil.Date, bool) {
	step, ok := offset(n, c.Interval, maxSpanYears)
	if !ok {
		return civil.Date{}, beyond, false
	}
	year := origin.Year + step

	floor := civil.Date{Year: year, Month: origin.Month, Day: 1}
	if origin.Day > daysIn(year, origin.Month) {
		// only reachable for February 29 in a common year
		return civil.Date{}, floor, false
	}
	return civil.Date{Year: year, Month: origin.Month, Day: origin.Day}, floor, true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewCadence builds the variant for kind. KindNone yields a nil Cadence.
func NewCadence(kind Kind, interval int) (Cadence, error) {
	if kind == KindNone {
		return nil, nil
	}
	switch kind {
	case KindDaily, KindWeekly, KindMonthly, KindYearly:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if interval < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, interval)
	}

	switch kind {
	case KindDaily:
		return Daily{Interval: interval}, nil
	case KindWeekly:
		return Weekly{Interval: interval}, nil
	case KindMonthly:
		return Monthly{Interval: interval}, nil
	default:
		return Yearly{Interval: interval}, nil
	}
}

// Descriptor is the recurrence attached to an event
type Descriptor struct {
	Cadence  Cadence               // nil for non-repeating events
	EndDate  mo.Option[civil.Date] // explicit end of the series, if any
	SeriesID string                // shared by every member of one expanded series
}

// Kind reports the cadence kind, KindNone for a nil cadence.
func (d Descriptor) Kind() Kind {
	if d.Cadence == nil {
		return KindNone
	}
	return d.Cadence.Kind()
}

// Interval reports the step multiplier. Non-repeating descriptors report 1.
func (d Descriptor) Interval() int {
	if d.Cadence == nil {
		return 1
	}
	return d.Cadence.Every()
}

func (d Descriptor) IsRecurring() bool {
	return d.Cadence != nil
}

// Detached returns the descriptor of an occurrence cut loose from its series.
func (d Descriptor) Detached() Descriptor {
	return Descriptor{}
}

// WithSeries returns a copy carrying seriesID.
func (d Descriptor) WithSeries(seriesID string) Descriptor {
	d.SeriesID = seriesID
	return d
}

type descriptorJSON struct {
	Type     Kind   `json:"type"`
	Interval int    `json:"interval"`
	EndDate  string `json:"endDate,omitempty"`
	ID       string `json:"id,omitempty"`
}

// MarshalJSON renders the {type, interval, endDate?, id?} wire shape.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	wire := descriptorJSON{
		Type:     d.Kind(),
		Interval: d.Interval(),
		ID:       d.SeriesID,
	}
	if end, ok := d.EndDate.Get(); ok && d.IsRecurring() {
		wire.EndDate = end.String()
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts the wire shape. An empty endDate string is treated as
// absent. The interval of a non-repeating descriptor is ignored.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var wire descriptorJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Type == "" {
		wire.Type = KindNone
	}

	cadence, err := NewCadence(wire.Type, wire.Interval)
	if err != nil {
		return err
	}

	out := Descriptor{Cadence: cadence, SeriesID: wire.ID}
	if wire.EndDate != "" && cadence != nil {
		end, err := civil.ParseDate(wire.EndDate)
		if err != nil {
			return fmt.Errorf("invalid endDate %q: %w", wire.EndDate, err)
		}
		out.EndDate = mo.Some(end)
	}
	*d = out
	return nil
}
