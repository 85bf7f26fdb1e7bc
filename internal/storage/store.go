package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spetersoncode/countdown/internal/config"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/models"
)

// TimersKey is the key the timer list is stored under.
const TimersKey = "timers"

// Store loads and saves the timer list through a KV.
type Store struct {
	kv KV
}

// NewStore creates a Store over kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// KV returns the underlying key-value store.
func (s *Store) KV() KV { return s.kv }

// Load returns the stored timers.
//
// A missing value, or one of null, [] and {}, yields the seed timers, which
// are also written back. Undecodable data or records that fail validation
// yield the seeds without overwriting what is stored. If the backend cannot
// be read the seeds are returned together with a StorageUnavailable error so
// the caller can continue in memory.
func (s *Store) Load(ctx context.Context) ([]models.Timer, error) {
	raw, ok, err := s.kv.Get(ctx, TimersKey)
	if err != nil {
		return models.SeedTimers(), cerrors.StorageUnavailable(err, "failed to read timers")
	}

	if !ok || isEmptyDocument(raw) {
		seeds := models.SeedTimers()
		if err := s.Save(ctx, seeds); err != nil {
			return seeds, err
		}
		return seeds, nil
	}

	timers, err := decodeTimers(raw)
	if err != nil {
		return models.SeedTimers(), nil
	}
	return timers, nil
}

// Save replaces the stored timer list.
func (s *Store) Save(ctx context.Context, timers []models.Timer) error {
	if timers == nil {
		timers = []models.Timer{}
	}
	data, err := json.Marshal(timers)
	if err != nil {
		return cerrors.WrapInternal(err, "failed to encode timers")
	}
	if err := s.kv.Set(ctx, TimersKey, data); err != nil {
		return cerrors.StorageUnavailable(err, "failed to save timers")
	}
	return nil
}

// Close closes the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}

func isEmptyDocument(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

func decodeTimers(raw []byte) ([]models.Timer, error) {
	var timers []models.Timer
	if err := json.Unmarshal(raw, &timers); err != nil {
		return nil, fmt.Errorf("decode timers: %w", err)
	}
	for i, t := range timers {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("timer %d: %w", i, err)
		}
	}
	return timers, nil
}

// Options selects and locates a backend.
type Options struct {
	Backend string
	Path    string
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Backend: cfg.GetBackend(), Path: cfg.GetDB()}
}

// Open opens the configured backend. Failures are StorageUnavailable errors.
func Open(opts Options) (KV, error) {
	switch opts.Backend {
	case config.BackendSQLite, "":
		kv, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, cerrors.StorageUnavailable(err, "sqlite store unavailable")
		}
		return kv, nil
	case config.BackendBolt:
		kv, err := OpenBolt(opts.Path)
		if err != nil {
			return nil, cerrors.StorageUnavailable(err, "bolt store unavailable")
		}
		return kv, nil
	case config.BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, cerrors.InvalidInput("unknown storage backend %q", opts.Backend).
			WithSuggestion("Use one of: sqlite, bolt, memory.")
	}
}

// OpenOrMemory opens the configured backend, falling back to an in-memory
// store when it is unavailable. The returned error, if any, explains the
// fallback and is safe to report as a warning.
func OpenOrMemory(opts Options) (KV, error) {
	kv, err := Open(opts)
	if err == nil {
		return kv, nil
	}
	if cerrors.Is(err, cerrors.KindStorageUnavailable) {
		return NewMemoryKV(), err
	}
	return nil, err
}
