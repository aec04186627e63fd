package dav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/model"
)

type recordedPut struct {
	path string
	user string
	body string
}

func TestPublish(t *testing.T) {
	var (
		mu   sync.Mutex
		puts []recordedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		user, _, _ := r.BasicAuth()
		b, _ := io.ReadAll(r.Body)

		mu.Lock()
		puts = append(puts, recordedPut{path: r.URL.Path, user: user, body: string(b)})
		mu.Unlock()

		w.Header().Set("ETag", `"1"`)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	d, err := New(srv.URL, "alex", "secret", nil)
	require.NoError(t, err)

	events := calendar.Events([]model.Task{
		{ID: "t1", Title: "Write report", ScheduledDate: "2024-03-15"},
		{ID: "t2", Title: "Unscheduled"},
		{ID: "t3", Title: "Dentist", ScheduledDate: "2024-03-18"},
	}, calendar.ExportOptions{Stamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Location: time.UTC})

	n, err := d.Publish(context.Background(), "/calendars/alex/tasks", events)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, puts, 2)
	assert.Equal(t, "/calendars/alex/tasks/t1@planr.ics", puts[0].path)
	assert.Equal(t, "/calendars/alex/tasks/t3@planr.ics", puts[1].path)
	assert.Equal(t, "alex", puts[0].user)
	assert.True(t, strings.Contains(puts[0].body, "SUMMARY:Write report"))
	assert.True(t, strings.Contains(puts[1].body, "DTSTART;VALUE=DATE:20240318"))
}

func TestPublishServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	d, err := New(srv.URL, "alex", "secret", nil)
	require.NoError(t, err)

	events := calendar.Events([]model.Task{
		{ID: "t1", Title: "Write report", ScheduledDate: "2024-03-15"},
	}, calendar.ExportOptions{Location: time.UTC})

	n, err := d.Publish(context.Background(), "/calendars/alex/tasks", events)
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}
