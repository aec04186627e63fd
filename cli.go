package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/model"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headStyle  = lipgloss.NewStyle().Bold(true)
	todayStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))

	urgencyStyles = map[model.Urgency]lipgloss.Style{
		model.UrgencyHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.UrgencyMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.UrgencyLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
)

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// swatch renders a coloured dot for a project or category colour, or
// nothing when no colour is set.
func swatch(color string) string {
	if color == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●") + " "
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// taskView is what list and show render for a task: the record plus its
// resolved references.
type taskView struct {
	model.Task
	ProjectName    string   `json:"projectName,omitempty"`
	CategoryNames  []string `json:"categoryNames,omitempty"`
	projectColor   string
	categoryColors []string
}

func viewTask(t model.Task, projects []model.Project, categories []model.Category) taskView {
	v := taskView{Task: t}
	if p, ok := model.FindProject(projects, t.Project); ok {
		v.ProjectName = p.Name
		v.projectColor = p.Color
	}
	for _, id := range t.Categories {
		if c, ok := model.FindCategory(categories, id); ok {
			v.CategoryNames = append(v.CategoryNames, c.Name)
			v.categoryColors = append(v.categoryColors, c.Color)
		}
	}
	return v
}

func (v taskView) categories() string {
	var parts []string
	for i, name := range v.CategoryNames {
		parts = append(parts, swatch(v.categoryColors[i])+name)
	}
	return strings.Join(parts, ", ")
}

func (v taskView) urgency() string {
	style, ok := urgencyStyles[v.Urgency]
	if !ok {
		return string(v.Urgency)
	}
	return style.Render(string(v.Urgency))
}

func printTaskTable(w io.Writer, views []taskView) {
	fmt.Fprintln(w, headStyle.Render(
		cell("ID", 10)+cell("URGENCY", 9)+cell("SCHEDULED", 12)+cell("PROJECT", 16)+"TITLE"))
	for _, v := range views {
		project := v.ProjectName
		if project == "" {
			project = "-"
		}
		scheduled := v.ScheduledDate
		if scheduled == "" {
			scheduled = "-"
		}
		fmt.Fprintln(w,
			cell(shortID(v.ID), 10)+
				cell(v.urgency(), 9)+
				cell(scheduled, 12)+
				cell(swatch(v.projectColor)+truncate(project, 13), 16)+
				truncate(v.Title, 50))
	}
}

func printTask(w io.Writer, v taskView) {
	row := func(label, value string) {
		if value == "" {
			value = dimStyle.Render("-")
		}
		fmt.Fprintf(w, "%s %s\n", headStyle.Render(cell(label, 10)), value)
	}
	row("ID", v.ID)
	row("Title", v.Title)
	row("Project", swatch(v.projectColor)+v.ProjectName)
	row("Urgency", v.urgency())
	row("Type", v.Type)
	row("Categories", v.categories())
	row("Deadline", v.Deadline)
	row("Scheduled", v.ScheduledDate)
	row("Created", v.CreatedAt)
	if v.Description != "" {
		fmt.Fprintf(w, "\n%s\n", v.Description)
	}
}

// parseDayArg understands today, tomorrow and yesterday plus anything
// dateparse reads, returning local midnight of that day.
func parseDayArg(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return calendar.StartOfDay(now), nil
	case "tomorrow":
		return calendar.StartOfDay(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return calendar.StartOfDay(now.AddDate(0, 0, -1)), nil
	}
	day, ok := calendar.ParseDay(s, now.Location())
	if !ok {
		return time.Time{}, fmt.Errorf("cannot parse date %q", s)
	}
	return day, nil
}

// parseDeadline returns an ISO-8601 UTC timestamp. A bare day means the end
// of that day.
func parseDeadline(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "tomorrow", "yesterday":
		day, err := parseDayArg(s, now)
		if err != nil {
			return "", err
		}
		return endOfDay(day).UTC().Format(model.CreatedAtLayout), nil
	}

	t, err := dateparse.ParseIn(s, now.Location())
	if err != nil {
		return "", fmt.Errorf("cannot parse deadline %q: %w", s, err)
	}
	if t.Equal(calendar.StartOfDay(t)) && !strings.ContainsAny(s, ":") {
		t = endOfDay(t)
	}
	return t.UTC().Format(model.CreatedAtLayout), nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// resolveProject accepts a project id or a case-insensitive name.
func resolveProject(projects []model.Project, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if p, ok := model.FindProject(projects, ref); ok {
		return p.ID, nil
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("no project %q", ref)
}

// resolveCategories accepts category ids or case-insensitive names.
func resolveCategories(categories []model.Category, refs []string) ([]string, error) {
	ids := []string{}
	for _, ref := range refs {
		if c, ok := model.FindCategory(categories, ref); ok {
			ids = append(ids, c.ID)
			continue
		}
		found := false
		for _, c := range categories {
			if strings.EqualFold(c.Name, ref) {
				ids = append(ids, c.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no category %q", ref)
		}
	}
	return ids, nil
}

// resolveTask accepts a full id or a unique id prefix, as printed by list.
func resolveTask(tasks []model.Task, ref string) (model.Task, error) {
	if t, ok := model.FindTask(tasks, ref); ok {
		return t, nil
	}
	var match []model.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("no task %q", ref)
	case 1:
		return match[0], nil
	}
	return model.Task{}, fmt.Errorf("task id %q is ambiguous", ref)
}
