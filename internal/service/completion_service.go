package service

import (
	"context"
	"time"

	"taskagent/internal/model"
	"taskagent/internal/recurrence"
	"taskagent/internal/repository"
)

// CompletionService is the completion overlay for recurring tasks:
// completion and accumulated time keyed by (task, calendar date) rather
// than by task alone. Task existence is not validated here; the store's
// foreign key is the only guard.
type CompletionService struct {
	completionRepo *repository.CompletionRepository
	hiddenRepo     *repository.HiddenDateRepository
	now            func() time.Time
}

func NewCompletionService(completionRepo *repository.CompletionRepository, hiddenRepo *repository.HiddenDateRepository) *CompletionService {
	return &CompletionService{
		completionRepo: completionRepo,
		hiddenRepo:     hiddenRepo,
		now:            time.Now,
	}
}

// IsCompletedOn reports whether the occurrence on the given date has
// been completed. No row means not completed.
func (s *CompletionService) IsCompletedOn(ctx context.Context, taskID uint, date string) (bool, error) {
	if _, err := recurrence.ParseDate(date); err != nil {
		return false, invalidf("%v", err)
	}
	comp, err := s.completionRepo.Find(ctx, taskID, date)
	if err != nil {
		return false, err
	}
	return comp != nil && comp.Completed, nil
}

// MarkComplete records the occurrence as done. Idempotent; repeated
// calls only refresh completed_at. Tracked time is untouched.
func (s *CompletionService) MarkComplete(ctx context.Context, taskID uint, date string) error {
	if _, err := recurrence.ParseDate(date); err != nil {
		return invalidf("%v", err)
	}
	return s.completionRepo.MarkComplete(ctx, taskID, date, s.now())
}

// MarkIncomplete reopens the occurrence. The row survives when time has
// been tracked against it, otherwise it is removed so toggling without
// tracking never grows the table.
func (s *CompletionService) MarkIncomplete(ctx context.Context, taskID uint, date string) error {
	if _, err := recurrence.ParseDate(date); err != nil {
		return invalidf("%v", err)
	}
	return s.completionRepo.MarkIncomplete(ctx, taskID, date)
}

// HideOccurrence removes one date from the series permanently. Hiding an
// already-hidden date is success.
func (s *CompletionService) HideOccurrence(ctx context.Context, taskID uint, date string) error {
	if _, err := recurrence.ParseDate(date); err != nil {
		return invalidf("%v", err)
	}
	return s.hiddenRepo.Hide(ctx, taskID, date)
}

// ListCompletions dumps every completion row, newest occurrence first.
func (s *CompletionService) ListCompletions(ctx context.Context) ([]model.TaskCompletion, error) {
	return s.completionRepo.ListAll(ctx)
}

// ListHiddenDates dumps every hidden-date marker.
func (s *CompletionService) ListHiddenDates(ctx context.Context) ([]model.HiddenDate, error) {
	return s.hiddenRepo.ListAll(ctx)
}
