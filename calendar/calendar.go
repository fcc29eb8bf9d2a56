// Package calendar projects the task collection onto a 7-day week window.
package calendar

import (
	"worklist/domain"
)

// Day is one cell of the week strip.
type Day struct {
	Date       string `json:"date"`
	DayOfMonth int    `json:"dayOfMonth"`
	Count      int    `json:"count"`
	IsToday    bool   `json:"isToday"`
	IsFocused  bool   `json:"isFocused"`
}

// Week produces the seven day cells from weekStart (a Sunday) through the
// following Saturday. Due-task counts cover the full task collection,
// unaffected by any active view filter. The today parameter is the current
// canonical date, passed in so projections are reproducible.
func Week(weekStart, focusDate string, tasks []domain.Task, today string) []Day {
	counts := make(map[string]int)
	for _, t := range tasks {
		if t.DueDate != "" {
			counts[t.DueDate]++
		}
	}
	start := domain.ParseDate(weekStart)
	days := make([]Day, 0, 7)
	for i := 0; i < 7; i++ {
		d := domain.AddDays(start, i)
		iso := domain.FormatDate(d)
		days = append(days, Day{
			Date:       iso,
			DayOfMonth: d.Day(),
			Count:      counts[iso],
			IsToday:    iso == today,
			IsFocused:  iso == focusDate,
		})
	}
	return days
}

// Label renders the human-readable range covered by the displayed week.
func Label(weekStart string) string {
	return domain.WeekLabel(weekStart)
}

// Shift moves the displayed week by delta weeks. When a focus date is set it
// follows along to the new week's start so the focus and the displayed week
// stay synchronized.
func Shift(ui *domain.UISettings, delta int) {
	base := ui.CalendarWeekStart
	if base == "" {
		anchor := ui.FocusDate
		if anchor == "" {
			anchor = domain.Today()
		}
		base = domain.StartOfWeek(anchor)
	}
	newStart := domain.FormatDate(domain.AddDays(domain.ParseDate(base), delta*7))
	ui.CalendarWeekStart = newStart
	if ui.FocusDate != "" {
		ui.FocusDate = newStart
	}
}

// Focus sets the focus date and realigns the displayed week to its Sunday.
// An empty date clears the focus instead.
func Focus(ui *domain.UISettings, iso string) {
	if iso == "" {
		ClearFocus(ui)
		return
	}
	ui.FocusDate = iso
	ui.CalendarWeekStart = domain.StartOfWeek(iso)
}

// ClearFocus removes the focus date. The displayed week is left where it is.
func ClearFocus(ui *domain.UISettings) {
	ui.FocusDate = ""
}
