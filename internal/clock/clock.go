// Package clock produces timezone-aware current time for the
// Scheduler (§4.1).
package clock

import (
	"time"

	"sacncore/internal/logger"
)

// fallbackTimezone is used when the configured timezone name cannot be
// resolved.
const fallbackTimezone = "America/Chicago"

// Now is the decomposed current time the Scheduler evaluates against.
type Now struct {
	Month   int
	Day     int
	Weekday int // 1..7, Sunday=1
	Hour    int
	Minute  int
}

// Clock resolves the device's configured timezone once and produces
// decomposed current time on demand.
type Clock struct {
	log logger.Logger
	loc *time.Location
}

// New resolves tzName, falling back to America/Chicago (and logging an
// error) when it is unknown.
func New(log logger.Logger, tzName string) *Clock {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		if log != nil {
			log.With(logger.Fields{"module": "clock"}).Errorf(
				"unknown timezone %q, falling back to %s: %v", tzName, fallbackTimezone, err)
		}
		loc, err = time.LoadLocation(fallbackTimezone)
		if err != nil {
			// The fallback is a fixed IANA name; if even stdlib's
			// timezone database lacks it, operate in UTC rather than fail.
			loc = time.UTC
		}
	}
	return &Clock{log: log, loc: loc}
}

// Now returns the current decomposed time in the configured timezone.
func (c *Clock) Now() Now {
	t := time.Now().In(c.loc)
	return Now{
		Month:   int(t.Month()),
		Day:     t.Day(),
		Weekday: int(t.Weekday()) + 1, // time.Weekday is already Sunday=0
		Hour:    t.Hour(),
		Minute:  t.Minute(),
	}
}

// MinuteOfDay returns hour*60+minute, the unit CustomBlock time-of-day
// bounds are compared in.
func (n Now) MinuteOfDay() int {
	return n.Hour*60 + n.Minute
}

// MonthDay returns month*100+day, the unit CustomBlock date bounds are
// compared in.
func (n Now) MonthDay() int {
	return n.Month*100 + n.Day
}
