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

// DeleteMode selects one of the three deletion semantics for recurring
// tasks. Non-recurring tasks ignore the mode and are deleted outright.
type DeleteMode string

const (
	// DeleteThis hides a single occurrence; the definition survives.
	DeleteThis DeleteMode = "this"
	// DeleteFuture ends the series at the anchor date; history survives.
	DeleteFuture DeleteMode = "future"
	// DeleteAll removes the definition and every trace of its history.
	DeleteAll DeleteMode = "all"
)

// ParseDeleteMode validates a wire-format delete mode.
func ParseDeleteMode(s string) (DeleteMode, error) {
	switch m := DeleteMode(s); m {
	case DeleteThis, DeleteFuture, DeleteAll:
		return m, nil
	default:
		return "", invalidf("unknown delete mode %q", s)
	}
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title              string `json:"title"`
	Notes              string `json:"notes"`
	ProjectID          *uint  `json:"project_id"`
	IsRecurring        bool   `json:"is_recurring"`
	RecurrenceType     string `json:"recurrence_type"`
	RecurrenceInterval int    `json:"recurrence_interval"`
	StartDate          string `json:"start_date"`
}

// TaskUpdate carries the fields accepted when editing a task.
type TaskUpdate struct {
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	ProjectID *uint  `json:"project_id"`
	Completed bool   `json:"completed"`
}

// TaskService orchestrates task lifecycle: creation, the three deletion
// semantics, move/copy, and date-scoped listing through the occurrence
// engine.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	hiddenRepo *repository.HiddenDateRepository
	now        func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, hiddenRepo *repository.HiddenDateRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, hiddenRepo: hiddenRepo, now: time.Now}
}

// Create validates and persists a new task definition. Recurring tasks
// require a recurrence type; the interval defaults to 1 and the start
// date to today.
func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, invalidf("title is required")
	}

	task := model.Task{
		Title:     input.Title,
		Notes:     input.Notes,
		ProjectID: input.ProjectID,
		StartDate: input.StartDate,
	}

	if task.StartDate == "" {
		task.StartDate = s.now().Format(recurrence.DateLayout)
	} else if _, err := recurrence.ParseDate(task.StartDate); err != nil {
		return nil, invalidf("%v", err)
	}

	if input.IsRecurring {
		freq, err := recurrence.ParseFrequency(input.RecurrenceType)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		interval := input.RecurrenceInterval
		if interval < 1 {
			interval = 1
		}
		task.IsRecurring = true
		task.RecurrenceType = string(freq)
		task.RecurrenceInterval = interval
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Get returns a single task or ErrNotFound.
func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

// List returns every task with project/client names joined in.
func (s *TaskService) List(ctx context.Context) ([]repository.TaskWithRefs, error) {
	return s.taskRepo.ListWithRefs(ctx)
}

// ListForDate filters the full task list down to tasks occurring on the
// given calendar date.
func (s *TaskService) ListForDate(ctx context.Context, date string) ([]repository.TaskWithRefs, error) {
	day, err := recurrence.ParseDate(date)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	tasks, err := s.taskRepo.ListWithRefs(ctx)
	if err != nil {
		return nil, err
	}
	hidden, err := s.hiddenRepo.SetByTask(ctx)
	if err != nil {
		return nil, err
	}

	occurring := make([]repository.TaskWithRefs, 0, len(tasks))
	for _, t := range tasks {
		ok, err := s.occursOn(&t.Task, hidden[t.ID], day)
		if err != nil {
			return nil, err
		}
		if ok {
			occurring = append(occurring, t)
		}
	}
	return occurring, nil
}

// OccursOn reports whether the task has an occurrence on the given date,
// taking hidden-date suppression into account.
func (s *TaskService) OccursOn(ctx context.Context, task *model.Task, date string) (bool, error) {
	day, err := recurrence.ParseDate(date)
	if err != nil {
		return false, invalidf("%v", err)
	}
	if task.IsRecurring {
		isHidden, err := s.hiddenRepo.IsHidden(ctx, task.ID, day.Format(recurrence.DateLayout))
		if err != nil {
			return false, err
		}
		if isHidden {
			return false, nil
		}
	}
	return s.occursOn(task, nil, day)
}

// occursOn evaluates the occurrence rule against a pre-fetched hidden set.
func (s *TaskService) occursOn(task *model.Task, hidden map[string]bool, day time.Time) (bool, error) {
	if !task.IsRecurring {
		anchor := task.StartDate
		if anchor == "" {
			anchor = task.CreatedAt.Format(recurrence.DateLayout)
		}
		return anchor == day.Format(recurrence.DateLayout), nil
	}

	if hidden[day.Format(recurrence.DateLayout)] {
		return false, nil
	}

	start, err := recurrence.ParseDate(task.StartDate)
	if err != nil {
		// Older rows may predate the start_date column; fall back to
		// the creation date like the list views do.
		start = task.CreatedAt
	}
	rule := recurrence.Rule{
		Frequency: recurrence.Frequency(task.RecurrenceType),
		Interval:  task.RecurrenceInterval,
		Start:     start,
	}
	if task.EndDate != "" {
		end, err := recurrence.ParseDate(task.EndDate)
		if err != nil {
			return false, fmt.Errorf("task %d has malformed end date %q", task.ID, task.EndDate)
		}
		rule.End = &end
	}
	return rule.OccursOn(day)
}

// Update overwrites a task's editable fields.
func (s *TaskService) Update(ctx context.Context, id uint, input TaskUpdate) error {
	if input.Title == "" {
		return invalidf("title is required")
	}
	affected, err := s.taskRepo.Update(ctx, id, map[string]interface{}{
		"title":      input.Title,
		"notes":      input.Notes,
		"project_id": input.ProjectID,
		"completed":  input.Completed,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete applies one of the three deletion semantics. The anchor date is
// the occurrence being acted on (modes this/future); DeleteAll ignores it.
func (s *TaskService) Delete(ctx context.Context, id uint, mode DeleteMode, anchorDate string) error {
	switch mode {
	case DeleteThis:
		if _, err := recurrence.ParseDate(anchorDate); err != nil {
			return invalidf("%v", err)
		}
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return s.hiddenRepo.Hide(ctx, id, anchorDate)

	case DeleteFuture:
		if _, err := recurrence.ParseDate(anchorDate); err != nil {
			return invalidf("%v", err)
		}
		affected, err := s.taskRepo.SetEndDate(ctx, id, anchorDate)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil

	case DeleteAll:
		affected, err := s.taskRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil

	default:
		return invalidf("unknown delete mode %q", mode)
	}
}

// Move re-anchors a task's single occurrence to a new date.
func (s *TaskService) Move(ctx context.Context, id uint, newDate string) error {
	if newDate == "" {
		return invalidf("new date is required")
	}
	if _, err := recurrence.ParseDate(newDate); err != nil {
		return invalidf("%v", err)
	}
	affected, err := s.taskRepo.SetStartDate(ctx, id, newDate)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Copy inserts a fresh task cloned from the original, anchored at the new
// date. Completion and hidden-date history is not copied; the copy starts
// a clean series.
func (s *TaskService) Copy(ctx context.Context, id uint, newDate string) (*model.Task, error) {
	if _, err := recurrence.ParseDate(newDate); err != nil {
		return nil, invalidf("%v", err)
	}
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := model.Task{
		Title:              original.Title,
		Notes:              original.Notes,
		ProjectID:          original.ProjectID,
		IsRecurring:        original.IsRecurring,
		RecurrenceType:     original.RecurrenceType,
		RecurrenceInterval: original.RecurrenceInterval,
		StartDate:          newDate,
	}
	if err := s.taskRepo.Create(ctx, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// EndRecurrence sets the series end date; occurrences after it are
// suppressed, history on or before it survives.
func (s *TaskService) EndRecurrence(ctx context.Context, id uint, endDate string) error {
	if endDate == "" {
		return invalidf("end date is required")
	}
	if _, err := recurrence.ParseDate(endDate); err != nil {
		return invalidf("%v", err)
	}
	affected, err := s.taskRepo.SetEndDate(ctx, id, endDate)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks a one-off task done, banking any running timer first so
// its elapsed time is not lost.
func (s *TaskService) Complete(ctx context.Context, id uint) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.LastStart != nil {
		if _, err := s.taskRepo.CloseTimer(ctx, id, s.now()); err != nil {
			return err
		}
	}
	now := s.now()
	_, err = s.taskRepo.Update(ctx, id, map[string]interface{}{
		"completed":    true,
		"completed_at": now,
	})
	return err
}

// Uncomplete reopens a one-off task.
func (s *TaskService) Uncomplete(ctx context.Context, id uint) error {
	affected, err := s.taskRepo.Update(ctx, id, map[string]interface{}{
		"completed":    false,
		"completed_at": nil,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
