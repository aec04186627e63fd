package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrusme/planr/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSameDay(t *testing.T) {
	task := model.Task{ID: "t1", Title: "Dentist", ScheduledDate: "2024-03-15"}

	assert.True(t, SameDay(task, day(2024, 3, 15)))
	assert.True(t, SameDay(task, time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)))
	assert.False(t, SameDay(task, day(2024, 3, 14)))
	assert.False(t, SameDay(task, day(2024, 3, 16)))
	assert.False(t, SameDay(model.Task{Title: "unscheduled"}, day(2024, 3, 15)))
}

func TestSameDayIgnoresTimeOfDay(t *testing.T) {
	task := model.Task{ScheduledDate: "2024-03-15T18:45:00Z"}
	assert.True(t, SameDay(task, day(2024, 3, 15)))

	compact := model.Task{ScheduledDate: "20240315T070000Z"}
	assert.True(t, SameDay(compact, day(2024, 3, 15)))
}

func TestParseDayCompactDateTime(t *testing.T) {
	cases := map[string]string{
		"20240315T070000Z": "2024-03-15",
		"20240331T235959Z": "2024-03-31",
		"20240315T070000":  "2024-03-15",
		"20241109":         "2024-11-09",
	}
	for in, want := range cases {
		d, ok := ParseDay(in, time.UTC)
		require.True(t, ok, in)
		assert.Equal(t, want, d.Format(model.DateLayout), in)
	}

	late := model.Task{ScheduledDate: "20240328T120000Z"}
	assert.Len(t, TasksForDay([]model.Task{late}, day(2024, 3, 28)), 1)
	assert.Empty(t, TasksForDay([]model.Task{late}, day(2024, 3, 1)))
}

func TestSameDayUsesCellLocation(t *testing.T) {
	// A date-only value is a local day, not UTC midnight.
	ny := time.FixedZone("EST", -5*60*60)

	task := model.Task{ScheduledDate: "2024-03-15"}
	assert.True(t, SameDay(task, time.Date(2024, 3, 15, 8, 0, 0, 0, ny)))
	assert.False(t, SameDay(task, time.Date(2024, 3, 14, 8, 0, 0, 0, ny)))
}

func TestTasksForDay(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", ScheduledDate: "2024-03-15"},
		{ID: "b", ScheduledDate: "2024-03-16"},
		{ID: "c"},
		{ID: "d", ScheduledDate: "2024-03-15"},
	}

	got := TasksForDay(tasks, day(2024, 3, 15))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestReschedule(t *testing.T) {
	in := model.Task{
		ID:            "t1",
		Title:         "Write report",
		Urgency:       model.UrgencyHigh,
		Categories:    []string{"c1"},
		CreatedAt:     "2024-03-01T08:00:00.000Z",
		ScheduledDate: "2024-03-01",
	}

	out := Reschedule(in, time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-20", out.ScheduledDate)
	out.ScheduledDate = in.ScheduledDate
	assert.Equal(t, in, out)
	assert.Equal(t, "2024-03-01", in.ScheduledDate)
}

func TestDaysWeek(t *testing.T) {
	// Wednesday
	current := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

	days, err := Days(Week, current, time.Sunday)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-10", days[0].Format(model.DateLayout))
	assert.Equal(t, time.Sunday, days[0].Weekday())
	assert.Equal(t, "2024-03-16", days[6].Format(model.DateLayout))

	days, err = Days(Week, current, time.Monday)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-03-11", days[0].Format(model.DateLayout))
	assert.Equal(t, "2024-03-17", days[6].Format(model.DateLayout))
}

func TestDaysMonth(t *testing.T) {
	days, err := Days(Month, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), time.Sunday)
	require.NoError(t, err)
	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-01", days[0].Format(model.DateLayout))
	assert.Equal(t, "2024-02-29", days[28].Format(model.DateLayout))
}

func TestDaysUnknownView(t *testing.T) {
	_, err := Days(View("year"), time.Now(), time.Sunday)
	assert.Error(t, err)
}

func TestNextPrevious(t *testing.T) {
	jan31 := day(2024, 1, 31)

	assert.Equal(t, day(2024, 2, 29), Next(Month, jan31))
	assert.Equal(t, day(2023, 12, 31), Previous(Month, jan31))
	assert.Equal(t, day(2024, 2, 7), Next(Week, jan31))
	assert.Equal(t, day(2024, 1, 24), Previous(Week, jan31))
}

func TestParseViewAndWeekday(t *testing.T) {
	v, err := ParseView("Month")
	require.NoError(t, err)
	assert.Equal(t, Month, v)
	_, err = ParseView("agenda")
	assert.Error(t, err)

	d, err := ParseWeekday("mon")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)
	d, err = ParseWeekday("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)
	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}
