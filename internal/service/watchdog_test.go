package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	warnings []timerKey
	stopped  []timerKey
}

func (n *recordingNotifier) TimerWarning(taskID uint, date string, _ time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, timerKey{taskID: taskID, date: date})
}

func (n *recordingNotifier) TimerAutoStopped(taskID uint, date string, _ int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = append(n.stopped, timerKey{taskID: taskID, date: date})
}

func newTestWatchdog(f *fixture, clock *fixedClock) (*TimerWatchdog, *recordingNotifier) {
	w := NewTimerWatchdog(f.taskRepo, f.compRepo, f.timers, zerolog.Nop())
	w.now = clock.now
	n := &recordingNotifier{}
	w.SetNotifier(n)
	return w, n
}

func TestWatchdogWarnsAfterAnHour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "deep work", "2025-06-02")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now
	w, n := newTestWatchdog(f, clock)

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))

	clock.advance(30 * time.Minute)
	require.NoError(t, w.Sweep(ctx))
	require.Empty(t, n.warnings)

	clock.advance(31 * time.Minute)
	require.NoError(t, w.Sweep(ctx))
	require.Equal(t, []timerKey{{taskID: task.ID}}, n.warnings)

	// Re-sweeping within the grace window does not repeat the warning.
	clock.advance(10 * time.Second)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)
	require.Empty(t, n.stopped)
}

func TestWatchdogAutoStopsUnansweredWarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createRecurring(t, "daily", 1, "2025-06-01")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now
	w, n := newTestWatchdog(f, clock)

	require.NoError(t, f.timers.Start(ctx, task.ID, "2025-06-02"))

	clock.advance(time.Hour)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)

	clock.advance(61 * time.Second)
	require.NoError(t, w.Sweep(ctx))
	require.Equal(t, []timerKey{{taskID: task.ID, date: "2025-06-02"}}, n.stopped)

	// The banked time covers the whole window, not just the grace period.
	comps, err := f.overlay.ListCompletions(ctx)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	require.Equal(t, int64(3661), comps[0].TimeSpent)
	require.Nil(t, comps[0].LastStart)

	// Nothing left running; further sweeps stay quiet.
	clock.advance(time.Hour)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)
	require.Len(t, n.stopped, 1)
}

func TestWatchdogConfirmGrantsAnotherHour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "deep work", "2025-06-02")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now
	w, n := newTestWatchdog(f, clock)

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))

	clock.advance(time.Hour)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)

	w.Confirm(task.ID, "")

	// Well past the grace window, but the confirmation holds for an hour.
	clock.advance(30 * time.Minute)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)
	require.Empty(t, n.stopped)

	// Once the snooze lapses the cycle starts over with a fresh warning.
	clock.advance(31 * time.Minute)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 2)
	require.Empty(t, n.stopped)
}

func TestWatchdogDropsWarningWhenTimerStops(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "deep work", "2025-06-02")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now
	w, n := newTestWatchdog(f, clock)

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	clock.advance(time.Hour)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)

	// The user stops the timer themselves before the grace runs out.
	_, err := f.timers.Stop(ctx, task.ID, "")
	require.NoError(t, err)

	clock.advance(5 * time.Minute)
	require.NoError(t, w.Sweep(ctx))
	require.Empty(t, n.stopped)

	// Restarting gets a clean hour.
	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	clock.advance(30 * time.Minute)
	require.NoError(t, w.Sweep(ctx))
	require.Len(t, n.warnings, 1)
}
