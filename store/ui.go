package store

import (
	"context"
	"strconv"

	"worklist/calendar"
	"worklist/domain"
)

func classIDString(id int) string { return strconv.Itoa(id) }

// UI returns a copy of the current UI preferences.
func (s *Store) UI() domain.UISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// SetTheme switches to the named theme.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if !domain.ValidTheme(theme) {
		return domain.ValidationError{Reason: "unknown theme " + theme}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.Theme = theme
	s.persistUI(ctx)
	return nil
}

// CycleTheme advances to the next theme in the cycle and returns it.
func (s *Store) CycleTheme(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.Theme = domain.NextTheme(s.ui.Theme)
	s.persistUI(ctx)
	return s.ui.Theme
}

// SetFocusDate selects the planning-from date and realigns the calendar week
// to it. An empty date clears the focus.
func (s *Store) SetFocusDate(ctx context.Context, iso string) error {
	if iso != "" && !domain.ValidDate(iso) {
		return domain.ValidationError{Reason: "focus date must be YYYY-MM-DD"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	calendar.Focus(&s.ui, iso)
	s.persistUI(ctx)
	return nil
}

// ClearFocusDate removes the focus date, leaving the displayed week alone.
func (s *Store) ClearFocusDate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calendar.ClearFocus(&s.ui)
	s.persistUI(ctx)
}

// ShiftWeek moves the displayed calendar week by delta weeks, dragging the
// focus date along when one is set.
func (s *Store) ShiftWeek(ctx context.Context, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	calendar.Shift(&s.ui, delta)
	s.persistUI(ctx)
}

// SelectClass sets the class chip filter. A selection that no longer names
// an existing class falls back to "all" rather than filtering everything out.
func (s *Store) SelectClass(ctx context.Context, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		value = domain.SelectedClassAll
	}
	if value != domain.SelectedClassAll && !s.classExists(value) {
		value = domain.SelectedClassAll
	}
	s.ui.SelectedClassID = value
	s.persistUI(ctx)
}

func (s *Store) classExists(value string) bool {
	for _, c := range s.state.Classes {
		if classIDString(c.ID) == value {
			return true
		}
	}
	return false
}

// SetScratchpad replaces the free-form notes text.
func (s *Store) SetScratchpad(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.Scratchpad = text
	s.persistUI(ctx)
}
