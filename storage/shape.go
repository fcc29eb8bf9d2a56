package storage

import "worklist/domain"

// EnsureStateShape backfills fields missing from task documents written by
// older schema versions and repairs counters so they stay ahead of every
// issued id. It is idempotent and leaves well-formed documents unchanged.
func EnsureStateShape(st *domain.State) {
	if st.Tasks == nil {
		st.Tasks = []domain.Task{}
	}
	if st.Classes == nil {
		st.Classes = []domain.Class{}
	}
	for i := range st.Tasks {
		t := &st.Tasks[i]
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if t.Subtasks == nil {
			t.Subtasks = []domain.Subtask{}
		}
		if !domain.ValidPriority(t.Priority) {
			t.Priority = domain.PriorityMedium
		}
	}
	if st.NextID < 1 {
		st.NextID = 1
	}
	for _, t := range st.Tasks {
		if t.ID >= st.NextID {
			st.NextID = t.ID + 1
		}
	}
	if st.NextClassID < 1 {
		st.NextClassID = 1
	}
	for _, c := range st.Classes {
		if c.ID >= st.NextClassID {
			st.NextClassID = c.ID + 1
		}
	}
}

// EnsureUIShape backfills UI preference fields added after the document was
// first written. CalendarWeekStart is derived from the focus date when set,
// otherwise from today. Idempotent; well-formed documents pass unchanged.
func EnsureUIShape(ui *domain.UISettings) {
	if !domain.ValidTheme(ui.Theme) {
		ui.Theme = domain.ThemeDefault
	}
	if ui.SelectedClassID == "" {
		ui.SelectedClassID = domain.SelectedClassAll
	}
	if ui.CalendarWeekStart == "" {
		base := ui.FocusDate
		if base == "" {
			base = domain.Today()
		}
		ui.CalendarWeekStart = domain.StartOfWeek(base)
	}
}
