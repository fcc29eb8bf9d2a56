package domain

import "fmt"

// ValidationError indicates invalid user input. The operation that produced
// it performed no mutation.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// NotFoundError indicates an operation referenced an id with no matching
// entity. Deletes and toggles treat this as a no-op instead.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e NotFoundError) Error() string { return fmt.Sprintf("%s %d not found", e.Kind, e.ID) }

// FormatError indicates a malformed persisted or imported document.
type FormatError struct {
	Reason string
}

func (e FormatError) Error() string { return e.Reason }

// StorageError wraps a failed write to the persistent store. The in-memory
// effect of the operation is kept; only durability is lost.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e StorageError) Unwrap() error { return e.Err }
