package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerBanksElapsedSeconds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "write report", "2025-06-02")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	clock.advance(90 * time.Second)
	total, err := f.timers.Stop(ctx, task.ID, "")
	require.NoError(t, err)
	require.Equal(t, int64(90), total)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, int64(90), got.TimeSpent)
	require.Nil(t, got.LastStart)
}

func TestTimerAccumulatesAcrossSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "write report", "2025-06-02")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	clock.advance(30 * time.Second)
	_, err := f.timers.Stop(ctx, task.ID, "")
	require.NoError(t, err)

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	clock.advance(45 * time.Second)
	total, err := f.timers.Stop(ctx, task.ID, "")
	require.NoError(t, err)
	require.Equal(t, int64(75), total)
}

func TestTimerDoubleStartRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "write report", "2025-06-02")

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	require.ErrorIs(t, f.timers.Start(ctx, task.ID, ""), ErrAlreadyRunning)
}

func TestTimerStopWithoutStartKeepsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createOneOff(t, "write report", "2025-06-02")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now

	require.NoError(t, f.timers.Start(ctx, task.ID, ""))
	clock.advance(20 * time.Second)
	_, err := f.timers.Stop(ctx, task.ID, "")
	require.NoError(t, err)

	// A second stop is a no-op reporting the unchanged total.
	total, err := f.timers.Stop(ctx, task.ID, "")
	require.NoError(t, err)
	require.Equal(t, int64(20), total)
}

func TestTimerRecurringRequiresOccurrenceDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createRecurring(t, "daily", 1, "2025-06-01")

	require.True(t, IsValidation(f.timers.Start(ctx, task.ID, "")))
	require.True(t, IsValidation(f.timers.Start(ctx, task.ID, "june 2nd")))
	_, err := f.timers.Stop(ctx, task.ID, "")
	require.True(t, IsValidation(err))
}

func TestTimerRecurringTracksPerOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createRecurring(t, "daily", 1, "2025-06-01")

	clock := &fixedClock{at: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	f.timers.now = clock.now

	require.NoError(t, f.timers.Start(ctx, task.ID, "2025-06-02"))
	require.ErrorIs(t, f.timers.Start(ctx, task.ID, "2025-06-02"), ErrAlreadyRunning)

	// A different occurrence of the same task may run concurrently.
	require.NoError(t, f.timers.Start(ctx, task.ID, "2025-06-03"))

	clock.advance(60 * time.Second)
	total, err := f.timers.Stop(ctx, task.ID, "2025-06-02")
	require.NoError(t, err)
	require.Equal(t, int64(60), total)

	clock.advance(30 * time.Second)
	total, err = f.timers.Stop(ctx, task.ID, "2025-06-03")
	require.NoError(t, err)
	require.Equal(t, int64(90), total)
}

func TestTimerStartClearsStaleCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createRecurring(t, "daily", 1, "2025-06-01")

	require.NoError(t, f.overlay.MarkComplete(ctx, task.ID, "2025-06-02"))
	require.NoError(t, f.timers.Start(ctx, task.ID, "2025-06-02"))

	done, err := f.overlay.IsCompletedOn(ctx, task.ID, "2025-06-02")
	require.NoError(t, err)
	require.False(t, done)
}

func TestTimerUnknownTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.timers.Start(ctx, 9999, ""), ErrNotFound)
	_, err := f.timers.Stop(ctx, 9999, "")
	require.ErrorIs(t, err, ErrNotFound)
}
