package model

import (
	"slices"
	"strings"
	"time"
)

// Collection keys in the persistent store.
const (
	KeyTasks      = "tasks"
	KeyProjects   = "projects"
	KeyCategories = "categories"
)

// DateLayout is the format of Task.ScheduledDate.
const DateLayout = "2006-01-02"

// CreatedAtLayout matches the ISO-8601 timestamps written by the desktop app.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank orders urgencies low < medium < high. Unknown values rank 0.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	}
	return 0
}

func (u Urgency) Valid() bool {
	return u.Rank() > 0
}

// ParseUrgency accepts the three urgency names case-insensitively.
func ParseUrgency(s string) (Urgency, bool) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	return u, u.Valid()
}

type Task struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Project       string   `json:"project"`
	Urgency       Urgency  `json:"urgency"`
	Deadline      string   `json:"deadline,omitempty"`
	Type          string   `json:"type"`
	Categories    []string `json:"categories"`
	CreatedAt     string   `json:"createdAt"`
	ScheduledDate string   `json:"scheduledDate,omitempty"`
}

func (t Task) GetID() string { return t.ID }

// Created parses CreatedAt. The zero time is returned when it is unset or
// malformed.
func (t Task) Created() time.Time {
	c, err := time.Parse(time.RFC3339Nano, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return c
}

// HasCategory reports whether id is one of the task's categories.
func (t Task) HasCategory(id string) bool {
	return slices.Contains(t.Categories, id)
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	t.Categories = slices.Clone(t.Categories)
	return t
}

type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (p Project) GetID() string { return p.ID }

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (c Category) GetID() string { return c.ID }

// Entity is implemented by the three stored record kinds.
type Entity interface {
	Task | Project | Category
	GetID() string
}

// Find returns the first record with the given id. Soft references that no
// longer resolve yield false.
func Find[E Entity](records []E, id string) (E, bool) {
	for _, r := range records {
		if r.GetID() == id {
			return r, true
		}
	}
	var zero E
	return zero, false
}

func FindTask(tasks []Task, id string) (Task, bool) {
	return Find(tasks, id)
}

func FindProject(projects []Project, id string) (Project, bool) {
	return Find(projects, id)
}

func FindCategory(categories []Category, id string) (Category, bool) {
	return Find(categories, id)
}
