package api

import (
	"worklist/store"
)

const (
	// taskRequestMaxSize caps single-task payloads.
	taskRequestMaxSize = 64 * 1024 // 64 KiB
	// importMaxSize caps uploaded export files.
	importMaxSize = 4 << 20 // 4 MiB
)

// HeaderIdempotencyKey carries the client-chosen key for mutation dedup.
const HeaderIdempotencyKey = "Idempotency-Key"

type taskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	ClassID     *int     `json:"classId"`
	Subtasks    []string `json:"subtasks"`
}

func (r taskRequest) fields() store.TaskFields {
	return store.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		Tags:        r.Tags,
		ClassID:     r.ClassID,
		Subtasks:    r.Subtasks,
	}
}

type subtaskRequest struct {
	Done bool `json:"done"`
}

type reorderRequest struct {
	Order []int `json:"order"`
}

type classRequest struct {
	Name string `json:"name"`
}

// uiRequest applies partial updates to the UI preferences. Pointer fields
// are only acted on when present in the payload. FocusDate set to the empty
// string clears the focus.
type uiRequest struct {
	Theme         *string `json:"theme,omitempty"`
	CycleTheme    bool    `json:"cycleTheme,omitempty"`
	FocusDate     *string `json:"focusDate,omitempty"`
	ShiftWeek     *int    `json:"shiftWeek,omitempty"`
	SelectedClass *string `json:"selectedClass,omitempty"`
	Scratchpad    *string `json:"scratchpad,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type clearedResponse struct {
	Removed int `json:"removed"`
}
