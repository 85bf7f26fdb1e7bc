package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spetersoncode/countdown/internal/countdown"
	cerrors "github.com/spetersoncode/countdown/internal/errors"
	"github.com/spetersoncode/countdown/internal/models"
	"github.com/spetersoncode/countdown/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyKV wraps a MemoryKV and fails writes while broken is set.
type flakyKV struct {
	*storage.MemoryKV
	mu     sync.Mutex
	broken bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errors.New("write refused")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func (f *flakyKV) setBroken(b bool) {
	f.mu.Lock()
	f.broken = b
	f.mu.Unlock()
}

func newTestService(t *testing.T) (*TimerService, *flakyKV) {
	t.Helper()
	kv := &flakyKV{MemoryKV: storage.NewMemoryKV()}
	svc := NewTimerService(storage.NewStore(kv), countdown.FixedClock(100000))
	require.NoError(t, svc.Load(context.Background()))
	return svc, kv
}

func TestTimerService_LoadSeeds(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, models.SeedTimers(), svc.List())
}

func TestTimerService_Append(t *testing.T) {
	ctx := context.Background()
	svc, kv := newTestService(t)

	timer, err := svc.Append(ctx, AppendInput{Name: "launch", Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, models.NewTimer("launch", 1704067200000), timer)

	list := svc.List()
	require.Len(t, list, 4)
	assert.Equal(t, timer, list[3])

	// The change is persisted.
	reloaded := NewTimerService(storage.NewStore(kv), nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, list, reloaded.List())
}

func TestTimerService_AppendKeepsNameVerbatim(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	padded, err := svc.Append(ctx, AppendInput{Name: " Launch ", Date: "0"})
	require.NoError(t, err)
	assert.Equal(t, " Launch ", padded.Name)
	assert.Equal(t, "timer1554613901", padded.Key)

	// Only the padding differs, so the keys do too.
	plain, err := svc.Append(ctx, AppendInput{Name: "Launch", Date: "0"})
	require.NoError(t, err)
	assert.NotEqual(t, padded.Key, plain.Key)

	blank, err := svc.Append(ctx, AppendInput{Name: "   ", Date: "0"})
	require.NoError(t, err)
	assert.Equal(t, "   ", blank.Name)
	assert.Len(t, svc.List(), 6)
}

func TestTimerService_AppendValidationOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Append(ctx, AppendInput{Name: "dup", Date: "0"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   AppendInput
		kind cerrors.Kind
		msg  string
	}{
		{"bad date beats empty name", AppendInput{Name: "", Date: "soon"}, cerrors.KindInvalidInput, "entered datetime is invalid"},
		{"bad date beats duplicate", AppendInput{Name: "dup", Date: "soon"}, cerrors.KindInvalidInput, "entered datetime is invalid"},
		{"empty name", AppendInput{Name: "", Date: "0"}, cerrors.KindInvalidInput, "timer name cannot be empty"},
		{"duplicate", AppendInput{Name: "dup", Date: "5"}, cerrors.KindDuplicateKey, "a timer with this name already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := svc.List()
			_, err := svc.Append(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, cerrors.GetKind(err))
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, before, svc.List())
		})
	}
}

func TestTimerService_Remove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	removed, err := svc.Remove(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Timer 1", removed.Key)

	keys := []string{}
	for _, tm := range svc.List() {
		keys = append(keys, tm.Key)
	}
	assert.Equal(t, []string{"Timer 0", "Timer 2"}, keys)

	for _, idx := range []int{-1, 2, 99} {
		_, err := svc.Remove(ctx, idx)
		assert.True(t, cerrors.Is(err, cerrors.KindNotFound), "index %d", idx)
	}
	assert.Len(t, svc.List(), 2)
}

func TestTimerService_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, kv := newTestService(t)
	before := svc.List()

	kv.setBroken(true)

	_, err := svc.Append(ctx, AppendInput{Name: "x", Date: "1"})
	assert.True(t, cerrors.Is(err, cerrors.KindStorageUnavailable))
	assert.Equal(t, before, svc.List())

	_, err = svc.Remove(ctx, 0)
	assert.True(t, cerrors.Is(err, cerrors.KindStorageUnavailable))
	assert.Equal(t, before, svc.List())

	kv.setBroken(false)
	_, err = svc.Append(ctx, AppendInput{Name: "x", Date: "1"})
	assert.NoError(t, err)
}

func TestTimerService_Replace(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	err := svc.Replace(ctx, []models.Timer{{Name: "a", Origin: 1}, {Key: "k", Name: "b", Origin: 2}})
	require.NoError(t, err)
	assert.Equal(t, []models.Timer{{Key: "timer97", Name: "a", Origin: 1}, {Key: "k", Name: "b", Origin: 2}}, svc.List())

	err = svc.Replace(ctx, []models.Timer{{Name: "a"}, {Name: "a"}})
	assert.True(t, cerrors.Is(err, cerrors.KindDuplicateKey))

	err = svc.Replace(ctx, []models.Timer{{Key: "k"}})
	assert.True(t, cerrors.Is(err, cerrors.KindInvalidInput))

	assert.Len(t, svc.List(), 2)
}

func TestTimerService_Render(t *testing.T) {
	svc, _ := newTestService(t)

	r, err := svc.Render(100000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), r.Now)
	assert.Equal(t, []string{"dhms"}, r.Specs)
	require.Len(t, r.Rows, 3)
	assert.Equal(t, []string{"-0d 0h 1m 40s "}, r.Rows[0].Cells)
	assert.Equal(t, "Timer 0 name", r.Rows[0].Name)

	r, err = svc.Render(100000, []countdown.FormatSpec{
		countdown.NewSpec(countdown.Second),
		countdown.NewSpec(countdown.Minute, countdown.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"-100s ", "-1m 40s "}, r.Rows[0].Cells)

	now, err := svc.RenderNow(nil)
	require.NoError(t, err)
	assert.Equal(t, r.Rows[0].Origin, now.Rows[0].Origin)
	assert.Equal(t, int64(100000), now.Now)
}

func TestTimerService_Subscribe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	var got [][]models.Timer
	unsubscribe := svc.Subscribe(func(timers []models.Timer) {
		got = append(got, timers)
	})

	_, err := svc.Append(ctx, AppendInput{Name: "one", Date: "1"})
	require.NoError(t, err)
	_, err = svc.Remove(ctx, 0)
	require.NoError(t, err)

	// Rejected mutations do not notify.
	_, err = svc.Append(ctx, AppendInput{Name: "one", Date: "1"})
	require.Error(t, err)

	require.Len(t, got, 2)
	assert.Len(t, got[0], 4)
	assert.Len(t, got[1], 3)

	unsubscribe()
	_, err = svc.Append(ctx, AppendInput{Name: "two", Date: "2"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
