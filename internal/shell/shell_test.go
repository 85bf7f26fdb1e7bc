package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/spetersoncode/countdown/internal/countdown"
	"github.com/spetersoncode/countdown/internal/service"
	"github.com/spetersoncode/countdown/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*Shell, *service.TimerService, *bytes.Buffer) {
	t.Helper()
	svc := service.NewTimerService(storage.NewStore(storage.NewMemoryKV()), countdown.FixedClock(100000))
	require.NoError(t, svc.Load(context.Background()))

	var out bytes.Buffer
	return NewWithWriter(svc, Config{}, &out), svc, &out
}

func TestExec_List(t *testing.T) {
	sh, _, out := newTestShell(t)

	assert.False(t, sh.Exec(context.Background(), "list"))
	assert.Contains(t, out.String(), "Timer 0 name")
	assert.Contains(t, out.String(), "1970-01-01 00:00:00")
	assert.Contains(t, out.String(), "IYKYK")
}

func TestExec_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	sh, svc, out := newTestShell(t)

	sh.Exec(ctx, "add 2027-01-01 New Year 2027")
	assert.Contains(t, out.String(), "Added New Year 2027 (timer-876605370)")
	require.Len(t, svc.List(), 4)

	out.Reset()
	sh.Exec(ctx, "add 2027-01-01 New Year 2027")
	assert.Contains(t, out.String(), "Error: a timer with this name already exists")
	assert.Contains(t, out.String(), "Choose a different name.")

	out.Reset()
	sh.Exec(ctx, "add someday Party")
	assert.Contains(t, out.String(), "Error: entered datetime is invalid")

	out.Reset()
	sh.Exec(ctx, "add 2027-01-01")
	assert.Contains(t, out.String(), "Usage: add")

	out.Reset()
	sh.Exec(ctx, "rm 3")
	assert.Contains(t, out.String(), "Removed New Year 2027")
	assert.Len(t, svc.List(), 3)

	out.Reset()
	sh.Exec(ctx, "rm nine")
	assert.Contains(t, out.String(), "Invalid index: nine")

	out.Reset()
	sh.Exec(ctx, "rm 9")
	assert.Contains(t, out.String(), "Error: no timer at index 9")
}

func TestExec_Render(t *testing.T) {
	sh, _, out := newTestShell(t)

	sh.Exec(context.Background(), "render")
	assert.Contains(t, out.String(), "-0d 0h 1m 40s")

	out.Reset()
	sh.Exec(context.Background(), "render s ms")
	assert.Contains(t, out.String(), "-100s")
	assert.Contains(t, out.String(), "-100000ms")

	out.Reset()
	sh.Exec(context.Background(), "render bogus")
	assert.Contains(t, out.String(), "Error:")
}

func TestExec_Misc(t *testing.T) {
	sh, _, out := newTestShell(t)
	ctx := context.Background()

	assert.False(t, sh.Exec(ctx, "   "))
	assert.Empty(t, out.String())

	assert.False(t, sh.Exec(ctx, "help"))
	assert.Contains(t, out.String(), "Countdown Commands:")

	out.Reset()
	assert.False(t, sh.Exec(ctx, "frobnicate"))
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	assert.True(t, sh.Exec(ctx, "exit"))
	assert.True(t, sh.Exec(ctx, "QUIT"))
}

func TestRun_WithoutTerminal(t *testing.T) {
	sh, _, _ := newTestShell(t)
	assert.Error(t, sh.Run(context.Background()))
}
