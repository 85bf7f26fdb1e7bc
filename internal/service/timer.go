// Package service provides the business logic behind every countdown front end.
package service

import (
	"context"
	"sync"

	"github.com/spetersoncode/countdown/internal/common"
	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/models"
	"github.com/spetersoncode/countdown/internal/storage"
)

// AppendInput is a request to add a timer.
type AppendInput struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Row is one rendered timer.
type Row struct {
	Index  int      `json:"index"`
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Origin int64    `json:"origin"`
	Cells  []string `json:"cells"`
}

// Rendering is the timer list formatted at a single instant.
type Rendering struct {
	Now   int64    `json:"now"`
	Specs []string `json:"specs"`
	Rows  []Row    `json:"rows"`
}

// TimerService owns the timer list. Every mutation is persisted before it
// becomes visible, and observers are notified afterwards.
type TimerService struct {
	mu     sync.Mutex
	store  *storage.Store
	clock  countdown.Clock
	timers []models.Timer

	obsMu     sync.Mutex
	observers map[int]func([]models.Timer)
	nextObs   int
}

// NewTimerService creates a TimerService over store. Call Load before use.
func NewTimerService(store *storage.Store, clock countdown.Clock) *TimerService {
	if clock == nil {
		clock = countdown.SystemClock{}
	}
	return &TimerService{
		store:     store,
		clock:     clock,
		observers: make(map[int]func([]models.Timer)),
	}
}

// Load reads the list from the store. When the store is unavailable the seed
// timers are kept in memory and the StorageUnavailable error is returned as a
// warning.
func (s *TimerService) Load(ctx context.Context) error {
	timers, err := s.store.Load(ctx)

	s.mu.Lock()
	s.timers = timers
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return err
}

// Clock returns the service clock.
func (s *TimerService) Clock() countdown.Clock { return s.clock }

// List returns a copy of the current timers in order.
func (s *TimerService) List() []models.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Append validates in and adds a timer at the end of the list.
//
// The date is checked first, then the name, then the derived key. A
// duplicate key leaves the list unchanged.
func (s *TimerService) Append(ctx context.Context, in AppendInput) (models.Timer, error) {
	origin, err := common.ParseOrigin(in.Date)
	if err != nil {
		return models.Timer{}, err
	}

	// The name is kept verbatim; surrounding spaces are part of its key.
	if in.Name == "" {
		return models.Timer{}, cerrors.InvalidInput("timer name cannot be empty")
	}

	timer := models.NewTimer(in.Name, origin)

	s.mu.Lock()
	if idx := models.IndexOfKey(s.timers, timer.Key); idx >= 0 {
		s.mu.Unlock()
		return models.Timer{}, cerrors.DuplicateKey("a timer with this name already exists").
			WithDetails("key", timer.Key).
			WithDetails("index", idx).
			WithSuggestion("Choose a different name.")
	}

	next := append(s.snapshotLocked(), timer)
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Timer{}, err
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return timer, nil
}

// Remove deletes the timer at index and returns it.
func (s *TimerService) Remove(ctx context.Context, index int) (models.Timer, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.timers) {
		n := len(s.timers)
		s.mu.Unlock()
		return models.Timer{}, cerrors.NotFound("no timer at index %d", index).
			WithDetails("index", index).
			WithDetails("count", n)
	}

	removed := s.timers[index]
	next := make([]models.Timer, 0, len(s.timers)-1)
	next = append(next, s.timers[:index]...)
	next = append(next, s.timers[index+1:]...)

	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Timer{}, err
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return removed, nil
}

// Replace swaps the whole list, as used by import. Every record is
// validated and keys must be unique.
func (s *TimerService) Replace(ctx context.Context, timers []models.Timer) error {
	seen := make(map[string]int, len(timers))
	next := make([]models.Timer, 0, len(timers))
	for i, t := range timers {
		if t.Key == "" && t.Name != "" {
			t.Key = models.HashName(t.Name)
		}
		if err := t.Validate(); err != nil {
			return cerrors.Wrap(err, cerrors.KindInvalidInput, "invalid timer at position %d", i)
		}
		if j, ok := seen[t.Key]; ok {
			return cerrors.DuplicateKey("timers %d and %d share key %s", j, i, t.Key)
		}
		seen[t.Key] = i
		next = append(next, t)
	}

	s.mu.Lock()
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Render formats every timer against now for each spec. An empty spec list
// renders the default spec.
func (s *TimerService) Render(now int64, specs []countdown.FormatSpec) (*Rendering, error) {
	if len(specs) == 0 {
		specs = []countdown.FormatSpec{countdown.DefaultSpec}
	}
	timers := s.List()

	matrix, err := countdown.FormatAll(now, models.Origins(timers), specs)
	if err != nil {
		return nil, err
	}

	r := &Rendering{
		Now:   now,
		Specs: make([]string, len(specs)),
		Rows:  make([]Row, len(timers)),
	}
	for i, spec := range specs {
		r.Specs[i] = spec.String()
	}
	for i, t := range timers {
		r.Rows[i] = Row{Index: i, Key: t.Key, Name: t.Name, Origin: t.Origin, Cells: matrix[i]}
	}
	return r, nil
}

// RenderNow renders against the service clock.
func (s *TimerService) RenderNow(specs []countdown.FormatSpec) (*Rendering, error) {
	return s.Render(s.clock.NowMillis(), specs)
}

// Subscribe registers fn to receive the list after every change. The
// returned function removes the subscription.
func (s *TimerService) Subscribe(fn func([]models.Timer)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// commitLocked persists next and installs it. On failure the list keeps
// its previous value.
func (s *TimerService) commitLocked(ctx context.Context, next []models.Timer) error {
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.timers = next
	return nil
}

func (s *TimerService) snapshotLocked() []models.Timer {
	out := make([]models.Timer, len(s.timers))
	copy(out, s.timers)
	return out
}

func (s *TimerService) notify(timers []models.Timer) {
	s.obsMu.Lock()
	fns := make([]func([]models.Timer), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(timers)
	}
}
