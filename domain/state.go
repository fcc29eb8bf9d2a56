package domain

// State is the persisted task document. Task order is display order; new
// tasks are inserted at the front. The id counters are monotonic and never
// reused, even after deletion.
type State struct {
	Tasks       []Task  `json:"tasks"`
	NextID      int     `json:"nextId"`
	Classes     []Class `json:"classes"`
	NextClassID int     `json:"nextClassId"`
}

// DefaultState returns a fresh empty task document.
func DefaultState() State {
	return State{
		Tasks:       []Task{},
		NextID:      1,
		Classes:     []Class{},
		NextClassID: 1,
	}
}
