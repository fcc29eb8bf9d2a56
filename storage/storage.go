package storage

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"worklist/domain"
)

// Storage persists the two application documents (task state and UI
// preferences) as JSON values in a key-value store. Loads never fail: an
// absent or unparsable document falls back to a default-constructed one,
// and every load passes through the ensure-shape migration.
type Storage struct {
	redis    *redis.Client
	stateKey string
	uiKey    string
	logger   *log.Logger
}

// New creates a Storage reading and writing the given keys.
func New(client *redis.Client, stateKey, uiKey string, logger *log.Logger) *Storage {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Storage{redis: client, stateKey: stateKey, uiKey: uiKey, logger: logger}
}

// LoadState returns the persisted task document, or a default one when the
// key is absent or holds data that does not parse.
func (s *Storage) LoadState(ctx context.Context) domain.State {
	st := domain.DefaultState()
	s.load(ctx, s.stateKey, &st)
	EnsureStateShape(&st)
	return st
}

// SaveState writes the task document. Failures are wrapped in
// domain.StorageError; callers log and keep the in-memory effect.
func (s *Storage) SaveState(ctx context.Context, st domain.State) error {
	return s.save(ctx, s.stateKey, st)
}

// LoadUI returns the persisted UI preferences, default-constructed when
// missing or corrupt.
func (s *Storage) LoadUI(ctx context.Context) domain.UISettings {
	ui := domain.DefaultUISettings()
	s.load(ctx, s.uiKey, &ui)
	EnsureUIShape(&ui)
	return ui
}

// SaveUI writes the UI preferences document.
func (s *Storage) SaveUI(ctx context.Context, ui domain.UISettings) error {
	return s.save(ctx, s.uiKey, ui)
}

// load fills v from the stored JSON at key. It leaves v untouched and
// returns false when the key is absent or the payload fails to parse, so
// the caller's default survives.
func (s *Storage) load(ctx context.Context, key string, v any) bool {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WithError(err).WithField("key", key).Warn("document read failed, using defaults")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("document corrupt, using defaults")
		return false
	}
	return true
}

func (s *Storage) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.StorageError{Op: "encode " + key, Err: err}
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return domain.StorageError{Op: "write " + key, Err: err}
	}
	return nil
}
