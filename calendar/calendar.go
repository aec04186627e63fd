// Package calendar places scheduled tasks onto day cells, builds the week
// and month grids shown by the planner and exports scheduled tasks as
// iCalendar all-day events.
package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/teambition/rrule-go"

	"github.com/mrusme/planr/model"
)

type View string

const (
	Week  View = "week"
	Month View = "month"
)

func ParseView(s string) (View, error) {
	switch View(strings.ToLower(s)) {
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	}
	return "", fmt.Errorf("unknown calendar view %q", s)
}

// ParseWeekday accepts English weekday names, full or three-letter.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

var compactDateTime = regexp.MustCompile(
	`^([0-9]{4})([0-9]{2})([0-9]{2})T([0-9]{2})([0-9]{2})([0-9]{2})(Z?)$`)

// ParseDay parses a date or date-time string and returns midnight of the
// calendar day it falls on in loc. Date-only input is read as a day in loc,
// never as UTC midnight.
func ParseDay(val string, loc *time.Location) (time.Time, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}, false
	}
	// dateparse does not understand the compact iCalendar form.
	val = compactDateTime.ReplaceAllString(val, "${1}-${2}-${3}T${4}:${5}:${6}${7}")

	t, err := dateparse.ParseIn(val, loc)
	if err != nil {
		return time.Time{}, false
	}
	return StartOfDay(t.In(loc)), true
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether the task is scheduled on day. Both sides are
// compared as yyyy-MM-dd in day's location, ignoring time of day.
func SameDay(t model.Task, day time.Time) bool {
	scheduled, ok := ParseDay(t.ScheduledDate, day.Location())
	if !ok {
		return false
	}
	return scheduled.Format(model.DateLayout) == day.Format(model.DateLayout)
}

func TasksForDay(tasks []model.Task, day time.Time) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if SameDay(t, day) {
			out = append(out, t)
		}
	}
	return out
}

// Reschedule returns a copy of t placed on day. No other field changes.
func Reschedule(t model.Task, day time.Time) model.Task {
	t = t.Clone()
	t.ScheduledDate = day.Format(model.DateLayout)
	return t
}

// Days returns the days shown for view around current: the week containing
// current starting on weekStart, or every day of current's month.
func Days(view View, current time.Time, weekStart time.Weekday) ([]time.Time, error) {
	var start, until time.Time
	day := StartOfDay(current)

	switch view {
	case Week:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		start = day.AddDate(0, 0, -offset)
		until = start.AddDate(0, 0, 6)
	case Month:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		until = start.AddDate(0, 1, -1)
	default:
		return nil, fmt.Errorf("unknown calendar view %q", view)
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   until,
	})
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

// Next steps current forward by one week or one month.
func Next(view View, current time.Time) time.Time {
	if view == Month {
		return addMonths(current, 1)
	}
	return current.AddDate(0, 0, 7)
}

func Previous(view View, current time.Time) time.Time {
	if view == Month {
		return addMonths(current, -1)
	}
	return current.AddDate(0, 0, -7)
}

// addMonths clamps the day to the target month, so Jan 31 + 1 is Feb 28/29.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}
