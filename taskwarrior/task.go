// Package taskwarrior renders planner tasks in the JSON format accepted by
// `task import`.
package taskwarrior

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/mrusme/planr/model"
)

const (
	StatusPending = "pending"

	timeLayout = "20060102T150405Z"
)

type Annotation struct {
	Entry       string `json:"entry"`
	Description string `json:"description"`
}

type Task struct {
	UUID        uuid.UUID    `json:"uuid"`
	Description string       `json:"description"`
	Entry       string       `json:"entry"`
	Scheduled   string       `json:"scheduled,omitempty"`
	Due         string       `json:"due,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Project     string       `json:"project,omitempty"`
	Status      string       `json:"status"`
	Tags        []string     `json:"tags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

func (t *Task) String() string {
	j, err := json.Marshal(t)
	if err != nil {
		return fmt.Sprintf("{\"error\": \"%s\"}", err)
	}
	return string(j)
}

// Converter resolves project and category references while converting.
type Converter struct {
	Projects   []model.Project
	Categories []model.Category
	Location   *time.Location
}

// Convert maps one planner task. Dangling project or category references
// are dropped.
func (c Converter) Convert(t model.Task) Task {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}

	tw := Task{
		UUID:        taskUUID(t.ID),
		Description: t.Title,
		Entry:       formatTime(t.CreatedAt, loc),
		Scheduled:   formatTime(t.ScheduledDate, loc),
		Due:         formatTime(t.Deadline, loc),
		Priority:    priority(t.Urgency),
		Status:      StatusPending,
	}
	if tw.Entry == "" {
		tw.Entry = time.Now().UTC().Format(timeLayout)
	}

	if p, ok := model.FindProject(c.Projects, t.Project); ok {
		tw.Project = p.Name
	}
	for _, id := range t.Categories {
		if cat, ok := model.FindCategory(c.Categories, id); ok {
			tw.Tags = append(tw.Tags, tag(cat.Name))
		}
	}
	if t.Description != "" {
		tw.Annotations = []Annotation{{Entry: tw.Entry, Description: t.Description}}
	}
	return tw
}

// Export writes tasks as a JSON array.
func (c Converter) Export(w io.Writer, tasks []model.Task) error {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, c.Convert(t))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func priority(u model.Urgency) string {
	switch u {
	case model.UrgencyHigh:
		return "H"
	case model.UrgencyMedium:
		return "M"
	case model.UrgencyLow:
		return "L"
	}
	return ""
}

// taskUUID keeps planner ids that already are UUIDs and derives a stable
// one for anything else.
func taskUUID(id string) uuid.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return u
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("planr:task:"+id))
}

func formatTime(val string, loc *time.Location) string {
	if val == "" {
		return ""
	}
	t, err := dateparse.ParseIn(val, loc)
	if err != nil {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// tag makes a category name usable as a Taskwarrior tag, which may not
// contain whitespace.
func tag(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
