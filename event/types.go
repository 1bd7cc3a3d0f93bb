package event

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/cyp0633/repeatcal/recurrence"
)

// ErrInvalidEvent is returned when an event or form fails field validation
var ErrInvalidEvent = errors.New("invalid event")

// Category is the closed set of event categories. The values are the labels
// the calendar UI sends on the wire.
type Category string

const (
	CategoryWork     Category = "업무"
	CategoryPersonal Category = "개인"
	CategoryFamily   Category = "가족"
	CategoryOther    Category = "기타"
)

// Categories lists every valid category in display order
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryFamily, CategoryOther}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Form is an event before the store has assigned it an identifier
type Form struct {
	Title            string                `json:"title"`
	Date             civil.Date            `json:"date"`
	StartTime        Clock                 `json:"startTime"`
	EndTime          Clock                 `json:"endTime"`
	Description      string                `json:"description"`
	Location         string                `json:"location"`
	Category         Category              `json:"category"`
	Repeat           recurrence.Descriptor `json:"repeat"`
	NotificationTime int                   `json:"notificationTime"` // minutes before start
}

// Event is one scheduled occurrence, standalone or a series member
type Event struct {
	ID string `json:"id,omitempty"`
	Form
}

// SeriesID returns the series the event belongs to, empty for standalone events.
func (e Event) SeriesID() string {
	return e.Repeat.SeriesID
}

// Validate checks the fields every stored event must satisfy.
func (f Form) Validate() error {
	switch {
	case f.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case !f.Date.IsValid():
		return fmt.Errorf("%w: date %s is not a calendar date", ErrInvalidEvent, f.Date)
	case !f.StartTime.Before(f.EndTime):
		return fmt.Errorf("%w: end time %s must be after start time %s", ErrInvalidEvent, f.EndTime, f.StartTime)
	case !f.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEvent, f.Category)
	case f.NotificationTime < 0:
		return fmt.Errorf("%w: notification time must not be negative", ErrInvalidEvent)
	}

	if !f.Repeat.IsRecurring() {
		if f.Repeat.SeriesID != "" {
			return fmt.Errorf("%w: non-repeating event carries series %q", ErrInvalidEvent, f.Repeat.SeriesID)
		}
		return nil
	}
	if f.Repeat.Interval() < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, recurrence.ErrInvalidInterval)
	}
	return nil
}

// Clock is a local time-of-day with minute precision
type Clock struct {
	Hour   int
	Minute int
}

const clockLayout = "15:04"

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Before(other Clock) bool {
	return c.minutes() < other.minutes()
}

// On returns the instant of c on date d in loc.
func (c Clock) On(d civil.Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(data []byte) error {
	parsed, err := ParseClock(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
