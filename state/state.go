// Package state owns the in-memory task, project and category collections
// that the presentation layer reads. It mirrors every successful access
// layer mutation locally instead of reloading.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/model"
)

// ErrUnknownTask is returned when an operation names a task that is not
// loaded.
var ErrUnknownTask = errors.New("unknown task")

// Backend is the domain access layer as seen by the state provider.
type Backend interface {
	GetTasks() ([]model.Task, error)
	AddTask(model.Task) (model.Task, error)
	UpdateTask(model.Task) (model.Task, error)
	DeleteTask(id string) (string, error)

	GetProjects() ([]model.Project, error)
	AddProject(model.Project) (model.Project, error)
	UpdateProject(model.Project) (model.Project, error)
	DeleteProject(id string) (string, error)

	GetCategories() ([]model.Category, error)
	AddCategory(model.Category) (model.Category, error)
	UpdateCategory(model.Category) (model.Category, error)
	DeleteCategory(id string) (string, error)
}

type State struct {
	backend Backend
	logger  *slog.Logger

	mu         sync.RWMutex
	tasks      []model.Task
	projects   []model.Project
	categories []model.Category
	loading    bool
	lastErr    string
}

type Option func(*State)

func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.logger = l }
}

// New returns a State in the loading state with empty collections. Call
// Load to populate it.
func New(b Backend, opts ...Option) *State {
	s := &State{
		backend:    b,
		logger:     slog.Default(),
		tasks:      []model.Task{},
		projects:   []model.Project{},
		categories: []model.Category{},
		loading:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the three collections concurrently. A collection that fails
// to load stays empty; the returned error is the first failure, and Error
// reports the last one recorded.
func (s *State) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var g errgroup.Group
	g.Go(func() error { return s.RefreshTasks(ctx) })
	g.Go(func() error { return s.RefreshProjects(ctx) })
	g.Go(func() error { return s.RefreshCategories(ctx) })
	return g.Wait()
}

func (s *State) RefreshTasks(ctx context.Context) error {
	return refresh(ctx, s, "tasks", s.backend.GetTasks, &s.tasks)
}

func (s *State) RefreshProjects(ctx context.Context) error {
	return refresh(ctx, s, "projects", s.backend.GetProjects, &s.projects)
}

func (s *State) RefreshCategories(ctx context.Context) error {
	return refresh(ctx, s, "categories", s.backend.GetCategories, &s.categories)
}

func refresh[E model.Entity](ctx context.Context, s *State, kind string, get func() ([]E, error), dst *[]E) error {
	if err := ctx.Err(); err != nil {
		return s.fail("Failed to fetch "+kind, "fetch "+kind, err)
	}
	records, err := get()
	if err != nil {
		return s.fail("Failed to fetch "+kind, "fetch "+kind, err)
	}

	s.mu.Lock()
	*dst = records
	s.mu.Unlock()
	s.logger.Debug("collection loaded", "kind", kind, "count", len(records))
	return nil
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the message of the most recent failed operation, or "".
func (s *State) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *State) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *State) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *State) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

func (s *State) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *State) FindTask(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := model.FindTask(s.tasks, id)
	return t.Clone(), ok
}

func (s *State) FindProject(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FindProject(s.projects, id)
}

func (s *State) FindCategory(id string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FindCategory(s.categories, id)
}

func (s *State) AddTask(t model.Task) (model.Task, error) {
	added, err := s.backend.AddTask(t)
	if err != nil {
		return model.Task{}, s.fail("Failed to add task", "add task", err)
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, added)
	s.mu.Unlock()
	return added.Clone(), nil
}

func (s *State) UpdateTask(t model.Task) (model.Task, error) {
	updated, err := s.backend.UpdateTask(t)
	if err != nil {
		return model.Task{}, s.fail("Failed to update task", "update task", err)
	}
	s.mu.Lock()
	replaceByID(s.tasks, updated)
	s.mu.Unlock()
	return updated.Clone(), nil
}

func (s *State) DeleteTask(id string) (string, error) {
	if _, err := s.backend.DeleteTask(id); err != nil {
		return id, s.fail("Failed to delete task", "delete task", err)
	}
	s.mu.Lock()
	s.tasks = removeByID(s.tasks, id)
	s.mu.Unlock()
	return id, nil
}

// RescheduleTask moves a loaded task onto the given calendar day and leaves
// every other field untouched.
func (s *State) RescheduleTask(id string, day time.Time) (model.Task, error) {
	t, ok := s.FindTask(id)
	if !ok {
		return model.Task{}, s.fail("Failed to update task", "reschedule task", fmt.Errorf("%w: %s", ErrUnknownTask, id))
	}
	return s.UpdateTask(calendar.Reschedule(t, day))
}

func (s *State) AddProject(p model.Project) (model.Project, error) {
	added, err := s.backend.AddProject(p)
	if err != nil {
		return model.Project{}, s.fail("Failed to add project", "add project", err)
	}
	s.mu.Lock()
	s.projects = append(s.projects, added)
	s.mu.Unlock()
	return added, nil
}

func (s *State) UpdateProject(p model.Project) (model.Project, error) {
	updated, err := s.backend.UpdateProject(p)
	if err != nil {
		return model.Project{}, s.fail("Failed to update project", "update project", err)
	}
	s.mu.Lock()
	replaceByID(s.projects, updated)
	s.mu.Unlock()
	return updated, nil
}

func (s *State) DeleteProject(id string) (string, error) {
	if _, err := s.backend.DeleteProject(id); err != nil {
		return id, s.fail("Failed to delete project", "delete project", err)
	}
	s.mu.Lock()
	s.projects = removeByID(s.projects, id)
	s.mu.Unlock()
	return id, nil
}

func (s *State) AddCategory(c model.Category) (model.Category, error) {
	added, err := s.backend.AddCategory(c)
	if err != nil {
		return model.Category{}, s.fail("Failed to add category", "add category", err)
	}
	s.mu.Lock()
	s.categories = append(s.categories, added)
	s.mu.Unlock()
	return added, nil
}

func (s *State) UpdateCategory(c model.Category) (model.Category, error) {
	updated, err := s.backend.UpdateCategory(c)
	if err != nil {
		return model.Category{}, s.fail("Failed to update category", "update category", err)
	}
	s.mu.Lock()
	replaceByID(s.categories, updated)
	s.mu.Unlock()
	return updated, nil
}

func (s *State) DeleteCategory(id string) (string, error) {
	if _, err := s.backend.DeleteCategory(id); err != nil {
		return id, s.fail("Failed to delete category", "delete category", err)
	}
	s.mu.Lock()
	s.categories = removeByID(s.categories, id)
	s.mu.Unlock()
	return id, nil
}

// fail records msg in the shared error slot and returns err wrapped with op.
func (s *State) fail(msg, op string, err error) error {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.logger.Debug(msg, "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *State) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func replaceByID[E model.Entity](records []E, rec E) {
	for i := range records {
		if records[i].GetID() == rec.GetID() {
			records[i] = rec
		}
	}
}

func removeByID[E model.Entity](records []E, id string) []E {
	return slices.DeleteFunc(records, func(r E) bool { return r.GetID() == id })
}
