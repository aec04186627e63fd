// Package query filters and sorts tasks for list views. Functions here are
// pure: they never modify their input.
package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/mrusme/planr/model"
)

// Filter criteria are ANDed. Zero-valued fields match everything.
type Filter struct {
	Search     string
	Project    string
	Urgency    model.Urgency
	Type       string
	Categories []string
}

func (f Filter) IsZero() bool {
	return f.Search == "" && f.Project == "" && f.Urgency == "" &&
		f.Type == "" && len(f.Categories) == 0
}

// Match reports whether t satisfies every criterion of f. Categories match
// when the task carries at least one of the selected ones.
func (f Filter) Match(t model.Task) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	if f.Project != "" && t.Project != f.Project {
		return false
	}
	if f.Urgency != "" && t.Urgency != f.Urgency {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, t.HasCategory) {
		return false
	}
	return true
}

type Field string

const (
	FieldNone          Field = "none"
	FieldCreatedAt     Field = "createdAt"
	FieldDeadline      Field = "deadline"
	FieldUrgency       Field = "urgency"
	FieldTitle         Field = "title"
	FieldDescription   Field = "description"
	FieldType          Field = "type"
	FieldProject       Field = "project"
	FieldScheduledDate Field = "scheduledDate"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

type Sort struct {
	Field     Field
	Direction Direction
}

// Preset sort modes offered by the list view.
var (
	SortNone      = Sort{Field: FieldNone}
	SortCreatedAt = Sort{Field: FieldCreatedAt, Direction: Desc}
	SortDeadline  = Sort{Field: FieldDeadline, Direction: Asc}
	SortUrgency   = Sort{Field: FieldUrgency, Direction: Desc}
)

var fields = []Field{
	FieldNone, FieldCreatedAt, FieldDeadline, FieldUrgency, FieldTitle,
	FieldDescription, FieldType, FieldProject, FieldScheduledDate,
}

// ParseSort reads "field" or "field:asc|desc". A bare preset field gets its
// preset direction; any other bare field sorts ascending.
func ParseSort(s string) (Sort, error) {
	name, dir, hasDir := strings.Cut(s, ":")
	if name == "" {
		return SortNone, nil
	}

	var field Field
	for _, f := range fields {
		if strings.EqualFold(string(f), name) {
			field = f
		}
	}
	if field == "" {
		return SortNone, fmt.Errorf("unknown sort field %q", name)
	}

	out := Sort{Field: field}
	switch field {
	case FieldCreatedAt, FieldUrgency:
		out.Direction = Desc
	}
	if hasDir {
		switch strings.ToLower(dir) {
		case "asc":
			out.Direction = Asc
		case "desc":
			out.Direction = Desc
		default:
			return SortNone, fmt.Errorf("unknown sort direction %q", dir)
		}
	}
	return out, nil
}

// Apply filters then sorts tasks, returning a new slice.
func Apply(tasks []model.Task, f Filter, s Sort) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	if s.Field == FieldNone || s.Field == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b model.Task) int {
		return compare(a, b, s)
	})
	return out
}

// compare orders two tasks by s. Tasks missing the sort value go after every
// task that has one, whatever the direction; two missing values are equal.
func compare(a, b model.Task, s Sort) int {
	av, aok := key(a, s.Field)
	bv, bok := key(b, s.Field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}

	c := av.cmp(bv)
	if s.Direction == Desc {
		return -c
	}
	return c
}

type sortKey struct {
	t time.Time
	n int
	s string
}

func (k sortKey) cmp(o sortKey) int {
	if c := k.t.Compare(o.t); c != 0 {
		return c
	}
	if k.n != o.n {
		if k.n < o.n {
			return -1
		}
		return 1
	}
	return strings.Compare(k.s, o.s)
}

func key(t model.Task, f Field) (sortKey, bool) {
	switch f {
	case FieldCreatedAt:
		return timeKey(t.CreatedAt)
	case FieldDeadline:
		return timeKey(t.Deadline)
	case FieldScheduledDate:
		return timeKey(t.ScheduledDate)
	case FieldUrgency:
		r := t.Urgency.Rank()
		return sortKey{n: r}, r > 0
	case FieldTitle:
		return textKey(t.Title)
	case FieldDescription:
		return textKey(t.Description)
	case FieldType:
		return textKey(t.Type)
	case FieldProject:
		return textKey(t.Project)
	}
	return sortKey{}, false
}

// timeKey falls back to comparing the raw text when the value is not a
// recognisable date.
func timeKey(v string) (sortKey, bool) {
	if v == "" {
		return sortKey{}, false
	}
	if t, err := dateparse.ParseAny(v); err == nil {
		return sortKey{t: t}, true
	}
	return sortKey{s: v}, true
}

func textKey(v string) (sortKey, bool) {
	if v == "" {
		return sortKey{}, false
	}
	return sortKey{s: strings.ToLower(v)}, true
}
