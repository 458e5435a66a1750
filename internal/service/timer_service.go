package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskagent/internal/model"
	"taskagent/internal/recurrence"
	"taskagent/internal/repository"
)

// TimerService starts and stops elapsed-time accumulation, routed to the
// task row for one-off tasks and to the matching completion row for
// recurring ones. At most one timer may run per task; a second start is
// rejected with ErrAlreadyRunning instead of silently resetting the
// window.
type TimerService struct {
	taskRepo       *repository.TaskRepository
	completionRepo *repository.CompletionRepository
	now            func() time.Time
}

func NewTimerService(taskRepo *repository.TaskRepository, completionRepo *repository.CompletionRepository) *TimerService {
	return &TimerService{
		taskRepo:       taskRepo,
		completionRepo: completionRepo,
		now:            time.Now,
	}
}

// Start begins a timer. Recurring tasks require the occurrence date;
// one-off tasks ignore it. Starting an occurrence always clears its
// completed flag so a stale "done" from a previous cycle cannot survive
// a running timer.
func (s *TimerService) Start(ctx context.Context, taskID uint, occurrenceDate string) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}

	if !task.IsRecurring {
		affected, err := s.taskRepo.BeginTimer(ctx, taskID, s.now())
		if err != nil {
			return err
		}
		if affected == 0 {
			// The row exists (we just read it), so the timer is running.
			return ErrAlreadyRunning
		}
		return nil
	}

	if occurrenceDate == "" {
		return invalidf("completion date is required for recurring tasks")
	}
	if _, err := recurrence.ParseDate(occurrenceDate); err != nil {
		return invalidf("%v", err)
	}
	comp, err := s.completionRepo.Find(ctx, taskID, occurrenceDate)
	if err != nil {
		return err
	}
	if comp != nil && comp.LastStart != nil {
		return ErrAlreadyRunning
	}
	return s.completionRepo.BeginTimer(ctx, taskID, occurrenceDate, s.now())
}

// Stop ends a timer, banking the elapsed whole seconds, and returns the
// new cumulative time_spent for the task or occurrence. Stopping a timer
// that is not running changes nothing and reports the current total.
func (s *TimerService) Stop(ctx context.Context, taskID uint, occurrenceDate string) (int64, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return 0, err
	}

	if !task.IsRecurring {
		return s.taskRepo.CloseTimer(ctx, taskID, s.now())
	}

	if occurrenceDate == "" {
		return 0, invalidf("completion date is required for recurring tasks")
	}
	if _, err := recurrence.ParseDate(occurrenceDate); err != nil {
		return 0, invalidf("%v", err)
	}
	return s.completionRepo.CloseTimer(ctx, taskID, occurrenceDate, s.now())
}

func (s *TimerService) findTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}
