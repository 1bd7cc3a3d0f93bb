package recurrence

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/teambition/rrule-go"
)

var frequencies = map[Kind]rrule.Frequency{
	KindDaily:   rrule.DAILY,
	KindWeekly:  rrule.WEEKLY,
	KindMonthly: rrule.MONTHLY,
	KindYearly:  rrule.YEARLY,
}

// ROption translates d into an RFC 5545 rule anchored at start. until is the
// effective end of the series. Monthly and yearly rules inherit the RFC
// behaviour of skipping non-existent dates, which is the same skip rule Generate
// applies.
func (d Descriptor) ROption(start, until civil.Date) (rrule.ROption, error) {
	if d.Cadence == nil {
		return rrule.ROption{}, fmt.Errorf("descriptor does not repeat")
	}
	freq, ok := frequencies[d.Kind()]
	if !ok {
		return rrule.ROption{}, fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind())
	}
	return rrule.ROption{
		Freq:     freq,
		Interval: d.Interval(),
		Dtstart:  start.In(time.UTC),
		Until:    until.In(time.UTC),
	}, nil
}

// RRule renders d as an RRULE value (without the "RRULE:" prefix).
func (d Descriptor) RRule(start, until civil.Date) (string, error) {
	opt, err := d.ROption(start, until)
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}
