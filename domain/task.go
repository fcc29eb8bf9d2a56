package domain

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Subtask is a checklist item owned by a single task. IDs are unique only
// within the owning task.
type Subtask struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Task represents a single to-do item.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate,omitempty"`
	Priority    string    `json:"priority"`
	Tags        []string  `json:"tags"`
	ClassID     *int      `json:"classId"`
	Subtasks    []Subtask `json:"subtasks"`
	Completed   bool      `json:"completed"`
	CreatedAt   string    `json:"createdAt"`
}

// IsOverdue reports whether the task is due strictly before the given day
// and has not been completed. Tasks without a due date are never overdue.
func (t Task) IsOverdue(today string) bool {
	return t.DueDate != "" && !t.Completed && t.DueDate < today
}
