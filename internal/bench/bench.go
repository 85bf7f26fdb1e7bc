// Package bench measures the timer formatter implementations against each
// other on a fixed data set.
package bench

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/spetersoncode/countdown/internal/bridge"
	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/models"
)

// DefaultIterations is the number of calls averaged per run.
const DefaultIterations = 1000

// Implementation names.
const (
	ImplDirect = "direct"
	ImplBridge = "bridge"
	ImplString = "string"
)

// Func renders origins against now, one row per origin.
type Func func(now int64, origins []int64) ([][]string, error)

var impls = map[string]Func{
	ImplDirect: direct,
	ImplBridge: newBridgeFunc(bridge.New()),
	ImplString: concat,
}

// Impls returns the implementation names in sorted order.
func Impls() []string {
	names := make([]string, 0, len(impls))
	for name := range impls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the implementation called name.
func Lookup(name string) (Func, error) {
	fn, ok := impls[name]
	if !ok {
		return nil, cerrors.InvalidInput("unknown implementation %q", name).
			WithSuggestion("Use one of: " + strings.Join(Impls(), ", ") + ".")
	}
	return fn, nil
}

// Seed returns the benchmark origins: the three seed timers followed by
// 1 through 200.
func Seed() []int64 {
	origins := models.Origins(models.SeedTimers())
	for i := int64(1); i <= 200; i++ {
		origins = append(origins, i)
	}
	return origins
}

// Run calls impl iterations times over origins and returns the mean time
// per call. Every call must produce a non-empty cell for every origin.
func Run(ctx context.Context, impl string, now int64, origins []int64, iterations int) (*models.BenchRun, error) {
	fn, err := Lookup(impl)
	if err != nil {
		return nil, err
	}
	if iterations <= 0 {
		return nil, cerrors.InvalidInput("iterations must be positive, got %d", iterations)
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := fn(now, origins)
		if err != nil {
			return nil, err
		}
		if err := checkRows(rows, len(origins)); err != nil {
			return nil, cerrors.WrapInternal(err, "%s produced an invalid rendering", impl)
		}
	}
	elapsed := time.Since(start)

	return &models.BenchRun{
		Impl:       impl,
		Iterations: iterations,
		Origins:    len(origins),
		MeanMicros: float64(elapsed.Nanoseconds()) / float64(iterations) / 1e3,
	}, nil
}

// RunAll runs every implementation in Impls order.
func RunAll(ctx context.Context, now int64, origins []int64, iterations int) ([]*models.BenchRun, error) {
	var runs []*models.BenchRun
	for _, name := range Impls() {
		run, err := Run(ctx, name, now, origins, iterations)
		if err != nil {
			return runs, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// FormatRun renders a run as a single report line.
func FormatRun(run *models.BenchRun) string {
	return fmt.Sprintf("%-11s impl: %9.4f microseconds average over %s runs of %s timers",
		run.Impl, run.MeanMicros, humanize.Comma(int64(run.Iterations)), humanize.Comma(int64(run.Origins)))
}

func checkRows(rows [][]string, want int) error {
	if len(rows) != want {
		return fmt.Errorf("got %d rows, want %d", len(rows), want)
	}
	for i, row := range rows {
		if len(row) == 0 {
			return fmt.Errorf("row %d is empty", i)
		}
		for j, cell := range row {
			if cell == "" {
				return fmt.Errorf("cell %d,%d is empty", i, j)
			}
		}
	}
	return nil
}

func direct(now int64, origins []int64) ([][]string, error) {
	return countdown.FormatAll(now, origins, nil)
}

func newBridgeFunc(b *bridge.Bridge) Func {
	return b.Render
}

// concat is the unoptimised baseline: one string concatenation per segment.
func concat(now int64, origins []int64) ([][]string, error) {
	units := countdown.DefaultSpec.TimeUnits()
	rows := make([][]string, len(origins))
	for i, origin := range origins {
		s := ""
		var remaining uint64
		if origin >= now {
			remaining = uint64(origin) - uint64(now)
		} else {
			s = "-"
			remaining = uint64(now) - uint64(origin)
		}
		for _, u := range units {
			d := uint64(u.Divisor)
			s = s + strconv.FormatUint(remaining/d, 10) + u.Suffix + " "
			remaining %= d
		}
		rows[i] = []string{s}
	}
	return rows, nil
}
