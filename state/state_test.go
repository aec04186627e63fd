package state_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrusme/planr/access"
	"github.com/mrusme/planr/model"
	"github.com/mrusme/planr/state"
	"github.com/mrusme/planr/store"
)

var errOffline = errors.New("store offline")

// flakyStore fails every call on the keys listed in failing.
type flakyStore struct {
	*store.Store
	failing map[string]bool
	down    atomic.Bool
}

func (f *flakyStore) Get(key string, v any) error {
	if f.down.Load() || f.failing[key] {
		return errOffline
	}
	return f.Store.Get(key, v)
}

func (f *flakyStore) Set(key string, v any) error {
	if f.down.Load() || f.failing[key] {
		return errOffline
	}
	return f.Store.Set(key, v)
}

func newFlaky(t *testing.T, failing ...string) *flakyStore {
	t.Helper()
	s, err := store.Open(store.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	f := &flakyStore{Store: s, failing: map[string]bool{}}
	for _, k := range failing {
		f.failing[k] = true
	}
	return f
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()
	require.NoError(t, s.Set(model.KeyTasks, []model.Task{
		{ID: "t1", Title: "Write report", Urgency: model.UrgencyHigh, Categories: []string{}},
	}))
	require.NoError(t, s.Set(model.KeyProjects, []model.Project{{ID: "p1", Name: "Work"}}))
	require.NoError(t, s.Set(model.KeyCategories, []model.Category{{ID: "c1", Name: "Errands"}}))
}

func TestLoad(t *testing.T) {
	fs := newFlaky(t)
	seed(t, fs.Store)

	st := state.New(access.New(fs))
	assert.True(t, st.Loading())

	require.NoError(t, st.Load(context.Background()))
	assert.False(t, st.Loading())
	assert.Empty(t, st.Error())
	assert.Len(t, st.Tasks(), 1)
	assert.Len(t, st.Projects(), 1)
	assert.Len(t, st.Categories(), 1)
}

func TestLoadPartialFailure(t *testing.T) {
	fs := newFlaky(t, model.KeyProjects)
	seed(t, fs.Store)

	st := state.New(access.New(fs))
	err := st.Load(context.Background())

	assert.ErrorIs(t, err, errOffline)
	assert.False(t, st.Loading())
	assert.Equal(t, "Failed to fetch projects", st.Error())
	assert.Empty(t, st.Projects())
	assert.Len(t, st.Tasks(), 1)
	assert.Len(t, st.Categories(), 1)
}

func TestLoadCanceled(t *testing.T) {
	fs := newFlaky(t)
	st := state.New(access.New(fs))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, st.Load(ctx), context.Canceled)
	assert.False(t, st.Loading())
	assert.NotEmpty(t, st.Error())
}

func TestTaskMutationsMirrorStore(t *testing.T) {
	fs := newFlaky(t)
	acc := access.New(fs, access.WithClock(func() time.Time {
		return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	}))
	st := state.New(acc)
	require.NoError(t, st.Load(context.Background()))

	added, err := st.AddTask(model.Task{Title: "Write report", Urgency: model.UrgencyHigh})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "2024-03-15T09:00:00.000Z", added.CreatedAt)

	added.Title = "Write final report"
	_, err = st.UpdateTask(added)
	require.NoError(t, err)

	stored, err := acc.GetTasks()
	require.NoError(t, err)
	assert.Equal(t, stored, st.Tasks())

	_, err = st.DeleteTask(added.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Tasks())

	stored, err = acc.GetTasks()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFailedMutationLeavesStateUnchanged(t *testing.T) {
	fs := newFlaky(t)
	seed(t, fs.Store)
	st := state.New(access.New(fs))
	require.NoError(t, st.Load(context.Background()))
	before := st.Tasks()

	fs.down.Store(true)

	_, err := st.AddTask(model.Task{Title: "New"})
	assert.ErrorIs(t, err, errOffline)
	assert.Equal(t, "Failed to add task", st.Error())

	_, err = st.DeleteTask("t1")
	assert.ErrorIs(t, err, errOffline)
	assert.Equal(t, "Failed to delete task", st.Error())

	assert.Equal(t, before, st.Tasks())

	_, err = st.UpdateProject(model.Project{ID: "p1", Name: "Job"})
	assert.Error(t, err)
	assert.Equal(t, "Failed to update project", st.Error())
	p, ok := st.FindProject("p1")
	require.True(t, ok)
	assert.Equal(t, "Work", p.Name)

	_, err = st.AddCategory(model.Category{Name: "Deep work"})
	assert.Error(t, err)
	assert.Equal(t, "Failed to add category", st.Error())
	assert.Len(t, st.Categories(), 1)

	st.ClearError()
	assert.Empty(t, st.Error())
}

func TestProjectAndCategoryLifecycle(t *testing.T) {
	st := state.New(access.New(newFlaky(t)))
	require.NoError(t, st.Load(context.Background()))

	p, err := st.AddProject(model.Project{Name: "Work", Color: "#3366ff"})
	require.NoError(t, err)
	c, err := st.AddCategory(model.Category{Name: "Errands"})
	require.NoError(t, err)

	_, err = st.UpdateProject(model.Project{ID: p.ID, Name: "Job"})
	require.NoError(t, err)
	got, ok := st.FindProject(p.ID)
	require.True(t, ok)
	assert.Equal(t, model.Project{ID: p.ID, Name: "Job"}, got)

	_, err = st.UpdateCategory(model.Category{ID: c.ID, Name: "Chores", Color: "#00aa00"})
	require.NoError(t, err)
	gotC, ok := st.FindCategory(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Chores", gotC.Name)

	_, err = st.DeleteProject(p.ID)
	require.NoError(t, err)
	_, ok = st.FindProject(p.ID)
	assert.False(t, ok)

	_, err = st.DeleteCategory(c.ID)
	require.NoError(t, err)
	assert.Empty(t, st.Categories())
}

func TestUpdateUnknownTaskIsNoop(t *testing.T) {
	fs := newFlaky(t)
	seed(t, fs.Store)
	st := state.New(access.New(fs))
	require.NoError(t, st.Load(context.Background()))

	ghost := model.Task{ID: "ghost", Title: "Boo"}
	got, err := st.UpdateTask(ghost)
	require.NoError(t, err)
	assert.Equal(t, "ghost", got.ID)
	assert.Len(t, st.Tasks(), 1)
	_, ok := st.FindTask("ghost")
	assert.False(t, ok)
}

func TestRescheduleTask(t *testing.T) {
	fs := newFlaky(t)
	seed(t, fs.Store)
	st := state.New(access.New(fs))
	require.NoError(t, st.Load(context.Background()))

	moved, err := st.RescheduleTask("t1", time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-04-02", moved.ScheduledDate)
	assert.Equal(t, "Write report", moved.Title)

	got, ok := st.FindTask("t1")
	require.True(t, ok)
	assert.Equal(t, "2024-04-02", got.ScheduledDate)

	_, err = st.RescheduleTask("missing", time.Now())
	assert.ErrorIs(t, err, state.ErrUnknownTask)
	assert.Equal(t, "Failed to update task", st.Error())
}

func TestSnapshotsAreCopies(t *testing.T) {
	fs := newFlaky(t)
	seed(t, fs.Store)
	st := state.New(access.New(fs))
	require.NoError(t, st.Load(context.Background()))

	tasks := st.Tasks()
	tasks[0].Title = "mutated"
	tasks[0].Categories = append(tasks[0].Categories, "x")

	got, ok := st.FindTask("t1")
	require.True(t, ok)
	assert.Equal(t, "Write report", got.Title)
	assert.Empty(t, got.Categories)
}
