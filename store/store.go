// Package store owns the canonical task collection and UI preferences. All
// mutations go through its operations; each successful mutation is written
// to storage immediately. A failed write is logged and the in-memory effect
// kept, which is the documented at-most-once durability gap.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"worklist/domain"
	"worklist/notify"
	"worklist/storage"
)

// Store holds the in-memory task state and UI preferences and keeps them
// durable through the storage layer.
type Store struct {
	mu       sync.Mutex
	storage  *storage.Storage
	notifier notify.Notifier
	logger   *log.Logger
	state    domain.State
	ui       domain.UISettings
	now      func() time.Time
}

// Open loads both persisted documents and returns a ready Store. Missing or
// corrupt documents come back default-constructed from the storage layer, so
// Open always succeeds.
func Open(ctx context.Context, st *storage.Storage, notifier notify.Notifier, logger *log.Logger) *Store {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{
		storage:  st,
		notifier: notifier,
		logger:   logger,
		state:    st.LoadState(ctx),
		ui:       st.LoadUI(ctx),
		now:      time.Now,
	}
}

// TaskFields carries the user-editable fields of a task. Subtasks are given
// as titles; the store matches them against existing subtasks on update.
type TaskFields struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Tags        []string
	ClassID     *int
	Subtasks    []string
}

func (f TaskFields) normalize() (TaskFields, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return f, domain.ValidationError{Reason: "task title must not be empty"}
	}
	f.Description = strings.TrimSpace(f.Description)
	if f.DueDate != "" && !domain.ValidDate(f.DueDate) {
		return f, domain.ValidationError{Reason: "due date must be YYYY-MM-DD"}
	}
	if f.Priority == "" {
		f.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(f.Priority) {
		return f, domain.ValidationError{Reason: "unknown priority " + f.Priority}
	}
	tags := make([]string, 0, len(f.Tags))
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	f.Tags = tags
	titles := make([]string, 0, len(f.Subtasks))
	for _, title := range f.Subtasks {
		if title = strings.TrimSpace(title); title != "" {
			titles = append(titles, title)
		}
	}
	f.Subtasks = titles
	return f, nil
}

// CreateTask validates fields, assigns the next id and inserts the new task
// at the front of the collection so the newest item is shown first.
func (s *Store) CreateTask(ctx context.Context, fields TaskFields) (domain.Task, error) {
	fields, err := fields.normalize()
	if err != nil {
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	subtasks := make([]domain.Subtask, 0, len(fields.Subtasks))
	for i, title := range fields.Subtasks {
		subtasks = append(subtasks, domain.Subtask{ID: i + 1, Title: title})
	}
	task := domain.Task{
		ID:          s.state.NextID,
		Title:       fields.Title,
		Description: fields.Description,
		DueDate:     fields.DueDate,
		Priority:    fields.Priority,
		Tags:        fields.Tags,
		ClassID:     fields.ClassID,
		Subtasks:    subtasks,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}
	s.state.NextID++
	s.state.Tasks = append([]domain.Task{task}, s.state.Tasks...)
	s.persistState(ctx)

	if task.DueDate != "" && task.DueDate == domain.Today() {
		s.notifier.Notify("Task due today", task.Title+" is due today")
	}
	return task, nil
}

// UpdateTask overwrites all mutable fields of the task with the given id.
// Incoming subtasks are matched to existing ones by exact title: matches keep
// their id and done flag, new titles get a fresh per-task id, and existing
// subtasks absent from the new list are dropped. Each existing subtask is
// consumed by at most one incoming title, so ids stay unique within the task
// even when titles repeat.
func (s *Store) UpdateTask(ctx context.Context, id int, fields TaskFields) (domain.Task, error) {
	fields, err := fields.normalize()
	if err != nil {
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(id)
	if task == nil {
		return domain.Task{}, domain.NotFoundError{Kind: "task", ID: id}
	}
	task.Title = fields.Title
	task.Description = fields.Description
	task.DueDate = fields.DueDate
	task.Priority = fields.Priority
	task.Tags = fields.Tags
	task.ClassID = fields.ClassID
	task.Subtasks = reconcileSubtasks(task.Subtasks, fields.Subtasks)
	s.persistState(ctx)
	return cloneTask(*task), nil
}

func reconcileSubtasks(existing []domain.Subtask, titles []string) []domain.Subtask {
	nextID := 1
	for _, st := range existing {
		if st.ID >= nextID {
			nextID = st.ID + 1
		}
	}
	used := make([]bool, len(existing))
	out := make([]domain.Subtask, 0, len(titles))
	for _, title := range titles {
		matched := false
		for i, prev := range existing {
			if !used[i] && prev.Title == title {
				out = append(out, prev)
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, domain.Subtask{ID: nextID, Title: title})
			nextID++
		}
	}
	return out
}

// DeleteTask removes the task if present. Deleting an absent id is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.state.Tasks[:0]
	removed := false
	for _, t := range s.state.Tasks {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return
	}
	s.state.Tasks = kept
	s.persistState(ctx)
}

// ToggleComplete flips the completed flag. It reports whether a task with
// the id existed; an absent id is a no-op.
func (s *Store) ToggleComplete(ctx context.Context, id int) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(id)
	if task == nil {
		return domain.Task{}, false
	}
	task.Completed = !task.Completed
	s.persistState(ctx)
	if task.Completed {
		s.notifier.Notify("Task completed", task.Title)
	}
	return cloneTask(*task), true
}

// SetSubtaskDone sets a subtask's done flag. Absent task or subtask ids are
// no-ops.
func (s *Store) SetSubtaskDone(ctx context.Context, taskID, subtaskID int, done bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(taskID)
	if task == nil {
		return false
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Done = done
			s.persistState(ctx)
			return true
		}
	}
	return false
}

// Reorder replaces the display order with the given id sequence. Tasks
// missing from the sequence are appended in their prior relative order, so a
// reorder issued from a filtered view never drops tasks.
func (s *Store) Reorder(ctx context.Context, ids []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := make([]domain.Task, 0, len(s.state.Tasks))
	placed := make(map[int]bool, len(ids))
	for _, id := range ids {
		if placed[id] {
			continue
		}
		if t := s.findTask(id); t != nil {
			ordered = append(ordered, *t)
			placed[id] = true
		}
	}
	for _, t := range s.state.Tasks {
		if !placed[t.ID] {
			ordered = append(ordered, t)
		}
	}
	s.state.Tasks = ordered
	s.persistState(ctx)
}

// CompleteAll marks every task completed, ignoring any active view filter.
func (s *Store) CompleteAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Tasks {
		s.state.Tasks[i].Completed = true
	}
	s.persistState(ctx)
}

// ClearCompleted removes every completed task and returns how many were
// removed.
func (s *Store) ClearCompleted(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]domain.Task, 0, len(s.state.Tasks))
	for _, t := range s.state.Tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.state.Tasks) - len(kept)
	if removed == 0 {
		return 0
	}
	s.state.Tasks = kept
	s.persistState(ctx)
	return removed
}

// AddClass creates a new class. Names must be non-empty and unique
// case-insensitively.
func (s *Store) AddClass(ctx context.Context, name string) (domain.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Class{}, domain.ValidationError{Reason: "class name must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.state.Classes {
		if strings.EqualFold(c.Name, name) {
			return domain.Class{}, domain.ValidationError{Reason: "class " + name + " already exists"}
		}
	}
	class := domain.Class{ID: s.state.NextClassID, Name: name}
	s.state.NextClassID++
	s.state.Classes = append(s.state.Classes, class)
	s.persistState(ctx)
	return class, nil
}

// Tasks returns a copy of the task collection in display order.
func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.state.Tasks)
}

// Classes returns a copy of the class collection in creation order.
func (s *Store) Classes() []domain.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Class(nil), s.state.Classes...)
}

// findTask returns a pointer into the live task slice; callers hold s.mu.
func (s *Store) findTask(id int) *domain.Task {
	for i := range s.state.Tasks {
		if s.state.Tasks[i].ID == id {
			return &s.state.Tasks[i]
		}
	}
	return nil
}

func (s *Store) persistState(ctx context.Context) {
	if err := s.storage.SaveState(ctx, s.state); err != nil {
		s.logger.WithError(err).Error("task state not persisted")
	}
}

func (s *Store) persistUI(ctx context.Context) {
	if err := s.storage.SaveUI(ctx, s.ui); err != nil {
		s.logger.WithError(err).Error("ui preferences not persisted")
	}
}

func cloneTask(t domain.Task) domain.Task {
	t.Tags = append([]string(nil), t.Tags...)
	t.Subtasks = append([]domain.Subtask(nil), t.Subtasks...)
	return t
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = cloneTask(t)
	}
	return out
}
