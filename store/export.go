package store

import (
	"context"
	"encoding/json"
	"time"

	"worklist/domain"
	"worklist/storage"
)

// ExportVersion is the export file format version.
const ExportVersion = 1

// ExportMeta describes when and in which format a document was exported.
type ExportMeta struct {
	ExportedAt string `json:"exportedAt"`
	Version    int    `json:"version"`
}

// ExportDocument is the transportable snapshot of both persisted documents.
type ExportDocument struct {
	Meta  ExportMeta        `json:"meta"`
	UI    domain.UISettings `json:"ui"`
	State domain.State      `json:"state"`
}

// Export snapshots the full persisted document set.
func (s *Store) Export() ExportDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	state.Tasks = cloneTasks(s.state.Tasks)
	state.Classes = append([]domain.Class(nil), s.state.Classes...)
	return ExportDocument{
		Meta:  ExportMeta{ExportedAt: s.now().UTC().Format(time.RFC3339), Version: ExportVersion},
		UI:    s.ui,
		State: state,
	}
}

// Import merges the tasks of an exported document into the store. Every
// incoming task receives a fresh id from this store's counter — imported ids
// are discarded so they can never collide — and imported tasks are prepended
// to the existing collection. Classes are not merged; only tasks are
// imported. It returns how many tasks were added.
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	var doc struct {
		State *struct {
			Tasks []domain.Task `json:"tasks"`
		} `json:"state"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, domain.FormatError{Reason: "unable to read JSON"}
	}
	if doc.State == nil || doc.State.Tasks == nil {
		return 0, domain.FormatError{Reason: "invalid file format"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := doc.State.Tasks
	imported := domain.State{Tasks: incoming}
	storage.EnsureStateShape(&imported)
	incoming = imported.Tasks
	for i := range incoming {
		incoming[i].ID = s.state.NextID
		s.state.NextID++
	}
	s.state.Tasks = append(incoming, s.state.Tasks...)
	s.persistState(ctx)
	return len(incoming), nil
}
