// Package access is the only path between planner state and the persistent
// store. Every call reads a whole collection, transforms it in memory and
// writes the whole collection back.
package access

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrusme/planr/model"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrMissingID   = errors.New("missing id")
)

// Store is the key-value persistence the layer reads and writes. Get must
// leave v untouched when key is absent.
type Store interface {
	Get(key string, v any) error
	Set(key string, v any) error
}

type Access struct {
	store  Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	// mu serialises read-modify-write cycles within this process.
	mu sync.Mutex
}

type Option func(*Access)

func WithClock(now func() time.Time) Option {
	return func(a *Access) { a.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(a *Access) { a.newID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Access) { a.logger = l }
}

func New(s Store, opts ...Option) *Access {
	a := &Access{
		store:  s,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Access) GetTasks() ([]model.Task, error) {
	return getAll[model.Task](a, model.KeyTasks)
}

// AddTask assigns a fresh id and creation time, overwriting whatever the
// caller set, and appends the task.
func (a *Access) AddTask(t model.Task) (model.Task, error) {
	t = normalizeTask(t)
	t.ID = a.newID()
	t.CreatedAt = a.now().UTC().Format(model.CreatedAtLayout)
	return add(a, model.KeyTasks, t)
}

// UpdateTask replaces the stored task with the same id. An unknown id is a
// no-op and the input is returned unchanged.
func (a *Access) UpdateTask(t model.Task) (model.Task, error) {
	return update(a, model.KeyTasks, t, normalizeTask)
}

// normalizeTask stores categories as an empty list rather than null.
func normalizeTask(t model.Task) model.Task {
	t = t.Clone()
	if t.Categories == nil {
		t.Categories = []string{}
	}
	return t
}

func (a *Access) DeleteTask(id string) (string, error) {
	return remove[model.Task](a, model.KeyTasks, id)
}

func (a *Access) GetProjects() ([]model.Project, error) {
	return getAll[model.Project](a, model.KeyProjects)
}

func (a *Access) AddProject(p model.Project) (model.Project, error) {
	p.ID = a.newID()
	return add(a, model.KeyProjects, p)
}

func (a *Access) UpdateProject(p model.Project) (model.Project, error) {
	return update(a, model.KeyProjects, p, nil)
}

func (a *Access) DeleteProject(id string) (string, error) {
	return remove[model.Project](a, model.KeyProjects, id)
}

func (a *Access) GetCategories() ([]model.Category, error) {
	return getAll[model.Category](a, model.KeyCategories)
}

func (a *Access) AddCategory(c model.Category) (model.Category, error) {
	c.ID = a.newID()
	return add(a, model.KeyCategories, c)
}

func (a *Access) UpdateCategory(c model.Category) (model.Category, error) {
	return update(a, model.KeyCategories, c, nil)
}

func (a *Access) DeleteCategory(id string) (string, error) {
	return remove[model.Category](a, model.KeyCategories, id)
}

func getAll[E model.Entity](a *Access, key string) ([]E, error) {
	records := []E{}
	if err := a.store.Get(key, &records); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if records == nil {
		records = []E{}
	}
	return records, nil
}

func add[E model.Entity](a *Access, key string, rec E) (E, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := getAll[E](a, key)
	if err != nil {
		return rec, err
	}
	if slices.ContainsFunc(records, func(r E) bool { return r.GetID() == rec.GetID() }) {
		return rec, fmt.Errorf("add to %s: %w: %s", key, ErrDuplicateID, rec.GetID())
	}

	records = append(records, rec)
	if err := a.store.Set(key, records); err != nil {
		return rec, fmt.Errorf("save %s: %w", key, err)
	}
	a.logger.Debug("record added", "kind", key, "id", rec.GetID(), "count", len(records))
	return rec, nil
}

// update replaces the stored record with rec's id. An unknown id writes
// nothing and returns rec unchanged; prepare, when set, only applies to a
// matched record.
func update[E model.Entity](a *Access, key string, rec E, prepare func(E) E) (E, error) {
	if rec.GetID() == "" {
		return rec, fmt.Errorf("update %s: %w", key, ErrMissingID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := getAll[E](a, key)
	if err != nil {
		return rec, err
	}
	i := slices.IndexFunc(records, func(r E) bool { return r.GetID() == rec.GetID() })
	if i < 0 {
		a.logger.Debug("update matched no record", "kind", key, "id", rec.GetID())
		return rec, nil
	}

	if prepare != nil {
		rec = prepare(rec)
	}
	records[i] = rec
	if err := a.store.Set(key, records); err != nil {
		return rec, fmt.Errorf("save %s: %w", key, err)
	}
	a.logger.Debug("record updated", "kind", key, "id", rec.GetID())
	return rec, nil
}

func remove[E model.Entity](a *Access, key string, id string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := getAll[E](a, key)
	if err != nil {
		return id, err
	}
	i := slices.IndexFunc(records, func(r E) bool { return r.GetID() == id })
	if i < 0 {
		return id, nil
	}

	records = slices.Delete(records, i, i+1)
	if err := a.store.Set(key, records); err != nil {
		return id, fmt.Errorf("save %s: %w", key, err)
	}
	a.logger.Debug("record deleted", "kind", key, "id", id, "count", len(records))
	return id, nil
}
