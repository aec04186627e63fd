package dav

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/mrusme/planr/calendar"
)

type DAV struct {
	httpClient webdav.HTTPClient
	cdClient   *caldav.Client
	logger     *slog.Logger

	endpoint string
	username string

	calendarHomeSet string
	calendars       []caldav.Calendar
}

// New prepares a CalDAV client. It does not contact the server.
func New(endpoint, username, password string, logger *slog.Logger) (*DAV, error) {
	var err error

	if logger == nil {
		logger = slog.Default()
	}

	dav := new(DAV)
	dav.endpoint = endpoint
	dav.username = username
	dav.logger = logger

	dav.httpClient = webdav.HTTPClientWithBasicAuth(nil, username, password)
	dav.cdClient, err = caldav.NewClient(dav.httpClient, dav.endpoint)
	if err != nil {
		return nil, fmt.Errorf("caldav client for %s: %w", endpoint, err)
	}

	return dav, nil
}

// RefreshCalendars discovers the calendars in the user's home set.
func (dav *DAV) RefreshCalendars(ctx context.Context) error {
	var err error

	dav.calendarHomeSet, err =
		dav.cdClient.FindCalendarHomeSet(ctx, fmt.Sprintf("principals/%s", dav.username))
	if err != nil {
		return fmt.Errorf("find calendar home set: %w", err)
	}

	dav.calendars, err = dav.cdClient.FindCalendars(ctx, dav.calendarHomeSet)
	if err != nil {
		return fmt.Errorf("find calendars: %w", err)
	}

	dav.logger.Debug("caldav calendars discovered", "home", dav.calendarHomeSet, "count", len(dav.calendars))
	return nil
}

func (dav *DAV) CalendarPaths() []string {
	var paths []string

	for _, cal := range dav.calendars {
		paths = append(paths, cal.Path)
	}

	return paths
}

// Publish stores each event as its own calendar object under calendarPath,
// named after the event UID so republishing overwrites instead of
// duplicating. It returns how many objects were written.
func (dav *DAV) Publish(ctx context.Context, calendarPath string, events []ical.Event) (int, error) {
	var n int

	for _, ev := range events {
		uid, err := ev.Props.Text(ical.PropUID)
		if err != nil || uid == "" {
			return n, fmt.Errorf("event without UID")
		}

		objPath := path.Join(calendarPath, uid+".ics")
		cal := calendar.NewCalendar("", ev)
		if _, err := dav.cdClient.PutCalendarObject(ctx, objPath, cal); err != nil {
			return n, fmt.Errorf("put %s: %w", objPath, err)
		}
		n++
		dav.logger.Debug("caldav object written", "path", objPath)
	}

	return n, nil
}
