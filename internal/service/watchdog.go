package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"taskagent/internal/repository"
)

const (
	// warnAfter is how long a timer may run before the user is warned.
	warnAfter = time.Hour
	// warnGrace is how long after the warning the user has to confirm
	// continuation before the timer is stopped automatically.
	warnGrace = 60 * time.Second

	sweepSpec = "@every 30s"
)

// Notifier delivers watchdog events to the user. The default logs them;
// anything that reaches the client (SSE, push) can be plugged in.
type Notifier interface {
	TimerWarning(taskID uint, occurrenceDate string, runningFor time.Duration)
	TimerAutoStopped(taskID uint, occurrenceDate string, timeSpent int64)
}

type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) TimerWarning(taskID uint, date string, runningFor time.Duration) {
	n.log.Warn().
		Uint("task_id", taskID).
		Str("occurrence_date", date).
		Dur("running_for", runningFor).
		Msg("timer running for an hour, confirm to keep it going")
}

func (n logNotifier) TimerAutoStopped(taskID uint, date string, timeSpent int64) {
	n.log.Warn().
		Uint("task_id", taskID).
		Str("occurrence_date", date).
		Int64("time_spent", timeSpent).
		Msg("timer auto-stopped after unanswered warning")
}

type timerKey struct {
	taskID uint
	date   string // empty for one-off tasks
}

// TimerWatchdog enforces the runaway-timer policy: after one continuous
// hour a running timer triggers a warning, and without confirmation
// within 60 seconds it is stopped so a forgotten timer cannot bank a
// night of phantom time.
type TimerWatchdog struct {
	taskRepo       *repository.TaskRepository
	completionRepo *repository.CompletionRepository
	timers         *TimerService
	notifier       Notifier
	log            zerolog.Logger
	cron           *cron.Cron
	now            func() time.Time

	mu       sync.Mutex
	warnedAt map[timerKey]time.Time
	snoozed  map[timerKey]time.Time
}

func NewTimerWatchdog(
	taskRepo *repository.TaskRepository,
	completionRepo *repository.CompletionRepository,
	timers *TimerService,
	log zerolog.Logger,
) *TimerWatchdog {
	return &TimerWatchdog{
		taskRepo:       taskRepo,
		completionRepo: completionRepo,
		timers:         timers,
		notifier:       logNotifier{log: log},
		log:            log,
		cron:           cron.New(),
		now:            time.Now,
		warnedAt:       make(map[timerKey]time.Time),
		snoozed:        make(map[timerKey]time.Time),
	}
}

// SetNotifier replaces the default log-based notifier.
func (w *TimerWatchdog) SetNotifier(n Notifier) {
	w.notifier = n
}

// Start schedules the periodic sweep.
func (w *TimerWatchdog) Start() error {
	_, err := w.cron.AddFunc(sweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := w.Sweep(ctx); err != nil {
			w.log.Error().Err(err).Msg("watchdog sweep")
		}
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the sweep and waits for a running one to finish.
func (w *TimerWatchdog) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// Confirm acknowledges a warning: the timer keeps running and gets a
// fresh hour before the next warning. Confirming an unwarned timer just
// snoozes it.
func (w *TimerWatchdog) Confirm(taskID uint, occurrenceDate string) {
	key := timerKey{taskID: taskID, date: occurrenceDate}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.warnedAt, key)
	w.snoozed[key] = w.now().Add(warnAfter)
}

// Sweep examines every running timer once: warn the overdue, stop the
// warned-and-unanswered.
func (w *TimerWatchdog) Sweep(ctx context.Context) error {
	now := w.now()

	running := make(map[timerKey]time.Time)
	tasks, err := w.taskRepo.ListRunning(ctx)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		running[timerKey{taskID: t.ID}] = *t.LastStart
	}
	comps, err := w.completionRepo.ListRunning(ctx)
	if err != nil {
		return err
	}
	for _, c := range comps {
		running[timerKey{taskID: c.TaskID, date: c.CompletionDate}] = *c.LastStart
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Timers that stopped (or restarted) since the last sweep drop any
	// pending warning.
	for key := range w.warnedAt {
		if _, ok := running[key]; !ok {
			delete(w.warnedAt, key)
		}
	}
	for key := range w.snoozed {
		if _, ok := running[key]; !ok {
			delete(w.snoozed, key)
		}
	}

	for key, startedAt := range running {
		runningFor := now.Sub(startedAt)
		if runningFor < warnAfter {
			continue
		}
		if until, ok := w.snoozed[key]; ok && now.Before(until) {
			continue
		}
		warned, ok := w.warnedAt[key]
		if !ok {
			w.warnedAt[key] = now
			w.notifier.TimerWarning(key.taskID, key.date, runningFor)
			continue
		}
		if now.Sub(warned) < warnGrace {
			continue
		}
		total, err := w.timers.Stop(ctx, key.taskID, key.date)
		if err != nil {
			w.log.Error().Err(err).Uint("task_id", key.taskID).Msg("watchdog auto-stop")
			continue
		}
		delete(w.warnedAt, key)
		delete(w.snoozed, key)
		w.notifier.TimerAutoStopped(key.taskID, key.date, total)
	}
	return nil
}
