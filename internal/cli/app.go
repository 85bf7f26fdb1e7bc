package cli

import (
	"context"

	"github.com/spetersoncode/countdown/internal/config"
	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/service"
	"github.com/spetersoncode/countdown/internal/storage"
)

// app bundles the opened store and the timer service for one command.
type app struct {
	store *storage.Store
	svc   *service.TimerService
}

// openApp opens the configured store and loads the timer list. An
// unavailable store is reported as a warning and the command continues
// against in-memory timers.
func openApp(ctx context.Context) (*app, error) {
	kv, err := storage.OpenOrMemory(GetStoreOptions())
	if kv == nil {
		return nil, err
	}
	if err != nil {
		ErrorOutput("Warning: %v; continuing with in-memory timers\n", err)
	}
	return loadApp(ctx, kv), nil
}

// loadApp loads the timer list from kv. A store that opened but cannot be
// read or written is closed and replaced by an in-memory one holding the
// seed timers.
func loadApp(ctx context.Context, kv storage.KV) *app {
	store := storage.NewStore(kv)
	svc := service.NewTimerService(store, countdown.SystemClock{})
	err := svc.Load(ctx)
	if err == nil {
		return &app{store: store, svc: svc}
	}
	if !cerrors.Is(err, cerrors.KindStorageUnavailable) {
		ErrorOutput("Warning: %v; continuing with seed timers\n", err)
		return &app{store: store, svc: svc}
	}

	ErrorOutput("Warning: %v; continuing with in-memory timers\n", err)
	store.Close()

	store = storage.NewStore(storage.NewMemoryKV())
	svc = service.NewTimerService(store, countdown.SystemClock{})
	if err := svc.Load(ctx); err != nil {
		ErrorOutput("Warning: %v\n", err)
	}
	return &app{store: store, svc: svc}
}

// Close closes the underlying store.
func (a *app) Close() error {
	return a.store.Close()
}

// resolveSpecs parses the --spec flags, falling back to the configured
// formats and then to the default spec.
func resolveSpecs(flagSpecs []string) ([]countdown.FormatSpec, error) {
	texts := flagSpecs
	if len(texts) == 0 {
		texts = GetConfig().Formats
	}
	if len(texts) == 0 {
		return []countdown.FormatSpec{countdown.DefaultSpec}, nil
	}

	specs, err := countdown.ParseSpecs(texts)
	if err != nil {
		if e, ok := cerrors.As(err); ok && e.Suggestion == "" {
			e.WithSuggestion(SuggestSpecFormat)
		}
		return nil, err
	}
	return specs, nil
}

// backendLabel names the backend for display.
func backendLabel() string {
	switch GetBackend() {
	case config.BackendMemory:
		return "memory"
	default:
		return GetBackend() + " (" + GetStorePath() + ")"
	}
}
