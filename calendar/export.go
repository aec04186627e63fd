package calendar

import (
	"errors"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/mrusme/planr/model"
)

const (
	DefaultName = "Productivity Planner Tasks"
	ProductID   = "-//mrusme//planr//EN"
	uidSuffix   = "@planr"
)

// ErrNothingScheduled is returned by Export when no task has a usable
// scheduled date.
var ErrNothingScheduled = errors.New("no scheduled tasks to export")

type ExportOptions struct {
	Name     string
	Stamp    time.Time
	Location *time.Location
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Stamp.IsZero() {
		o.Stamp = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Events returns one all-day event per task with a scheduled date. Tasks
// without one, or with one that does not parse, are skipped.
func Events(tasks []model.Task, opts ExportOptions) []ical.Event {
	opts = opts.withDefaults()

	var events []ical.Event
	for _, t := range tasks {
		day, ok := ParseDay(t.ScheduledDate, opts.Location)
		if !ok {
			continue
		}

		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, EventUID(t))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, opts.Stamp.UTC())
		ev.Props.SetDate(ical.PropDateTimeStart, day)
		ev.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
		ev.Props.SetText(ical.PropSummary, t.Title)
		if t.Description != "" {
			ev.Props.SetText(ical.PropDescription, t.Description)
		}
		events = append(events, *ev)
	}
	return events
}

// NewCalendar wraps events in a VCALENDAR with the planner's identity.
func NewCalendar(name string, events ...ical.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}
	for _, ev := range events {
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal
}

// Export writes every scheduled task to w as an iCalendar document.
func Export(w io.Writer, tasks []model.Task, opts ExportOptions) error {
	opts = opts.withDefaults()

	events := Events(tasks, opts)
	if len(events) == 0 {
		return ErrNothingScheduled
	}
	return ical.NewEncoder(w).Encode(NewCalendar(opts.Name, events...))
}

// EventUID returns the UID the exporter assigns to a task's event.
func EventUID(t model.Task) string {
	return t.ID + uidSuffix
}
