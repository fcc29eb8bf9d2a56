// Package view computes the exact ordered subset of tasks to display for a
// given set of filters, plus the aggregates shown around the list. Every
// stage is an independent predicate; the pipeline order is fixed only so
// stage-level behavior stays deterministic.
package view

import (
	"math"
	"strconv"
	"strings"

	"worklist/domain"
)

// Status filter values.
const (
	StatusAll     = "all"
	StatusActive  = "active"
	StatusDone    = "done"
	StatusToday   = "today"
	StatusOverdue = "overdue"
)

// Filter is the transient UI filter state applied to the task collection.
// Zero values mean "no filtering" for each field.
type Filter struct {
	Search    string
	Status    string
	Priority  string
	Class     string
	FocusDate string
}

// Apply runs the filter pipeline over tasks in display order: search, then
// status, then priority, then class, then focus date. The today parameter is
// the current canonical date, passed in so results are reproducible.
func Apply(tasks []domain.Task, f Filter, today string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, t := range tasks {
		if !matchesSearch(t, search) {
			continue
		}
		if !matchesStatus(t, f.Status, today) {
			continue
		}
		if f.Priority != "" && f.Priority != "all" && t.Priority != f.Priority {
			continue
		}
		if !matchesClass(t, f.Class) {
			continue
		}
		if !matchesFocus(t, f.FocusDate) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t domain.Task, search string) bool {
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func matchesStatus(t domain.Task, status, today string) bool {
	switch status {
	case StatusActive:
		return !t.Completed
	case StatusDone:
		return t.Completed
	case StatusToday:
		return t.DueDate == today
	case StatusOverdue:
		return t.IsOverdue(today)
	default:
		return true
	}
}

// matchesClass compares class ids as strings so documents that stored the
// id under a drifted type still match.
func matchesClass(t domain.Task, class string) bool {
	if class == "" || class == domain.SelectedClassAll {
		return true
	}
	if t.ClassID == nil {
		return false
	}
	return strconv.Itoa(*t.ClassID) == class
}

// matchesFocus keeps tasks with no due date, tasks due on or after the focus
// date, and overdue incomplete tasks. Overdue work stays visible regardless
// of the focus date so nothing is silently hidden.
func matchesFocus(t domain.Task, focusDate string) bool {
	if focusDate == "" {
		return true
	}
	if t.DueDate == "" {
		return true
	}
	if t.DueDate >= focusDate {
		return true
	}
	return !t.Completed
}

// Summary holds the aggregates computed over the unfiltered collection.
type Summary struct {
	Remaining int      `json:"remaining"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
	Percent   int      `json:"percent"`
	Tags      []string `json:"tags"`
}

// Summarize computes counts, the completion percentage and the tag universe
// over the full task collection, unaffected by any active filter. Tags are
// deduplicated in order of first appearance.
func Summarize(tasks []domain.Task) Summary {
	sum := Summary{Total: len(tasks), Tags: []string{}}
	seen := make(map[string]bool)
	for _, t := range tasks {
		if t.Completed {
			sum.Completed++
		} else {
			sum.Remaining++
		}
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				sum.Tags = append(sum.Tags, tag)
			}
		}
	}
	sum.Percent = ProgressPercent(sum.Completed, sum.Remaining)
	return sum
}

// ProgressPercent is the rounded share of completed tasks, or 0 when there
// are no tasks at all.
func ProgressPercent(completed, remaining int) int {
	total := completed + remaining
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// ClassCount is one chip in the class list: the synthetic "all" chip first,
// then every class with its global task count.
type ClassCount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// ClassCounts computes per-class totals over the full collection so the
// chips always show true counts regardless of active filters. A selected id
// that matches no class marks the "all" chip selected instead.
func ClassCounts(tasks []domain.Task, classes []domain.Class, selected string) []ClassCount {
	counts := make(map[int]int)
	for _, t := range tasks {
		if t.ClassID != nil {
			counts[*t.ClassID]++
		}
	}
	known := selected == domain.SelectedClassAll || selected == ""
	for _, c := range classes {
		if strconv.Itoa(c.ID) == selected {
			known = true
		}
	}
	out := make([]ClassCount, 0, len(classes)+1)
	out = append(out, ClassCount{
		ID:       domain.SelectedClassAll,
		Name:     "All",
		Count:    len(tasks),
		Selected: !known || selected == domain.SelectedClassAll || selected == "",
	})
	for _, c := range classes {
		id := strconv.Itoa(c.ID)
		out = append(out, ClassCount{ID: id, Name: c.Name, Count: counts[c.ID], Selected: id == selected})
	}
	return out
}

// BoardTitle is the heading over the task list: the focus date when one is
// set, otherwise "All Tasks".
func BoardTitle(focusDate string) string {
	return domain.DateHeading(focusDate)
}
