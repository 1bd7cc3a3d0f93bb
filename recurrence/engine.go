package recurrence

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/mo"
)

var (
	// ErrEndBeforeStart is returned when an explicit series end precedes its start
	ErrEndBeforeStart = errors.New("repeat end date must be on or after the start date")
	// ErrInvalidInterval is returned for a non-positive step multiplier
	ErrInvalidInterval = errors.New("repeat interval must be a positive integer")
	// ErrUnknownKind is returned for a recurrence type outside the closed set
	ErrUnknownKind = errors.New("unknown repeat type")
)

// Engine expands recurrence descriptors into occurrence dates. It is safe for
// concurrent use; every method is pure.
type Engine struct {
	config EngineConfig
}

// NewEngine creates a recurrence engine with DefaultEngineConfig
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

func (e *Engine) Config() EngineConfig {
	return e.config
}

// ValidateEndDate checks an optional series end against the start date. An
// absent end is always valid.
func ValidateEndDate(start civil.Date, end mo.Option[civil.Date]) error {
	last, ok := end.Get()
	if !ok {
		return nil
	}
	if last.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// DefaultEndDate is the implicit end of an open series: the same month and day
// one year later, clamped to the horizon.
func (e *Engine) DefaultEndDate(start civil.Date) civil.Date {
	// AddDate normalises February 29 to March 1 in a common year
	oneYear := civil.DateOf(start.In(time.UTC).AddDate(1, 0, 0))
	if oneYear.After(e.config.Horizon) {
		return e.config.Horizon
	}
	return oneYear
}

// EffectiveEnd returns the bound generation stops at for a series starting on start.
func (e *Engine) EffectiveEnd(start civil.Date, d Descriptor) civil.Date {
	end := d.EndDate.OrElse(e.DefaultEndDate(start))
	if end.After(e.config.Horizon) {
		return e.config.Horizon
	}
	return end
}

// Generate expands d from start into an ordered list of occurrence dates.
//
// A non-repeating descriptor yields exactly [start]. Otherwise candidates are
// computed from start directly, never from the previous candidate, and
// generation stops once a candidate passes the effective end or the list holds
// MaxOccurrences dates. Candidates that do not exist on the calendar (day 31 in
// a 30-day month, February 29 in a common year) are skipped and not counted.
func (e *Engine) Generate(start civil.Date, d Descriptor) ([]civil.Date, error) {
	if d.Cadence == nil {
		return []civil.Date{start}, nil
	}
	if d.Cadence.Every() < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, d.Cadence.Every())
	}
	if !start.IsValid() {
		return nil, fmt.Errorf("invalid start date %s", start)
	}

	bound := e.EffectiveEnd(start, d)
	dates := make([]civil.Date, 0)
	for n := 0; len(dates) < e.config.MaxOccurrences; n++ {
		candidate, floor, ok := d.Cadence.nth(start, n)
		if floor.After(bound) {
			break
		}
		if !ok {
			continue
		}
		if candidate.After(bound) {
			break
		}
		if last := len(dates) - 1; last >= 0 && !candidate.After(dates[last]) {
			break
		}
		dates = append(dates, candidate)
	}
	return dates, nil
}
