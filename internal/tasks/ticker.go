// Package tasks provides background task runners for countdown.
package tasks

import (
	"context"
	"time"

	"github.com/spetersoncode/countdown/internal/countdown"
	"github.com/spetersoncode/countdown/internal/service"
)

// TickResult is one rendering of the timer list.
type TickResult struct {
	Tick      int                `json:"tick"`
	Rendering *service.Rendering `json:"rendering,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Ticker re-renders the timer list on a fixed interval.
type Ticker struct {
	svc   *service.TimerService
	specs []countdown.FormatSpec
	tick  int
}

// NewTicker creates a Ticker rendering specs, or the default spec when none
// are given.
func NewTicker(svc *service.TimerService, specs []countdown.FormatSpec) *Ticker {
	return &Ticker{svc: svc, specs: specs}
}

// RenderOnce renders the list against the service clock.
func (t *Ticker) RenderOnce() *TickResult {
	t.tick++
	result := &TickResult{Tick: t.tick}
	r, err := t.svc.RenderNow(t.specs)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Rendering = r
	return result
}

// Run renders immediately and then every interval until ctx is done. No
// callback is issued once ctx is done.
func (t *Ticker) Run(ctx context.Context, interval time.Duration, callback func(*TickResult)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start
	if callback != nil {
		callback(t.RenderOnce())
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if callback != nil {
				callback(t.RenderOnce())
			}
		}
	}
}
