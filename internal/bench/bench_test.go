package bench

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	origins := Seed()
	require.Len(t, origins, 203)
	assert.Equal(t, []int64{0, 1696174196000, 1607025600000, 1, 2}, origins[:5])
	assert.Equal(t, int64(200), origins[202])
}

func TestImplsAgree(t *testing.T) {
	origins := append(Seed(), -90000000, 1<<53-1)
	const now = 1700000000000

	want, err := direct(now, origins)
	require.NoError(t, err)

	for _, name := range Impls() {
		t.Run(name, func(t *testing.T) {
			fn, err := Lookup(name)
			require.NoError(t, err)
			got, err := fn(now, origins)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%s disagrees with direct (-want +got):\n%s", name, diff)
			}
		})
	}
}

func TestRun(t *testing.T) {
	run, err := Run(context.Background(), ImplBridge, 0, Seed(), 10)
	require.NoError(t, err)
	assert.Equal(t, ImplBridge, run.Impl)
	assert.Equal(t, 10, run.Iterations)
	assert.Equal(t, 203, run.Origins)
	assert.Greater(t, run.MeanMicros, 0.0)
	assert.NoError(t, run.Validate())
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, "wasm", 0, Seed(), 1)
	assert.True(t, cerrors.Is(err, cerrors.KindInvalidInput))

	_, err = Run(ctx, ImplDirect, 0, Seed(), 0)
	assert.True(t, cerrors.Is(err, cerrors.KindInvalidInput))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Run(cancelled, ImplDirect, 0, Seed(), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAll(t *testing.T) {
	runs, err := RunAll(context.Background(), 0, Seed()[:3], 2)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ImplBridge, ImplDirect, ImplString}, []string{runs[0].Impl, runs[1].Impl, runs[2].Impl})
}

func TestCheckRows(t *testing.T) {
	assert.NoError(t, checkRows([][]string{{"a"}, {"b"}}, 2))
	assert.Error(t, checkRows([][]string{{"a"}}, 2))
	assert.Error(t, checkRows([][]string{{"a"}, {}}, 2))
	assert.Error(t, checkRows([][]string{{"a"}, {""}}, 2))
}

func TestFormatRun(t *testing.T) {
	line := FormatRun(&models.BenchRun{Impl: ImplDirect, Iterations: 1000, Origins: 203, MeanMicros: 12.5})
	assert.Equal(t, "direct      impl:   12.5000 microseconds average over 1,000 runs of 203 timers", line)
}
