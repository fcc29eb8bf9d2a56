package domain

// Class is a user-defined category a task may belong to. Names are unique
// case-insensitively; classes are only ever created, never renamed or removed.
type Class struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
