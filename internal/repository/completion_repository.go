package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskagent/internal/model"
)

// CompletionRepository handles the per-occurrence completion rows of
// recurring tasks.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Find returns the completion row for (task, date), or nil when none
// exists yet.
func (r *CompletionRepository) Find(ctx context.Context, taskID uint, date string) (*model.TaskCompletion, error) {
	var comp model.TaskCompletion
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND completion_date = ?", taskID, date).
		First(&comp).Error
	switch {
	case err == nil:
		return &comp, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find completion: %w", err)
	}
}

func (r *CompletionRepository) ListAll(ctx context.Context) ([]model.TaskCompletion, error) {
	var comps []model.TaskCompletion
	if err := r.db.WithContext(ctx).Order("completion_date DESC").Find(&comps).Error; err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return comps, nil
}

// MarkComplete upserts the row with completed = true. Time-tracking
// fields are left untouched either way.
func (r *CompletionRepository) MarkComplete(ctx context.Context, taskID uint, date string, now time.Time) error {
	comp := model.TaskCompletion{
		TaskID:         taskID,
		CompletionDate: date,
		Completed:      true,
		CompletedAt:    &now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_id"}, {Name: "completion_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
		}),
	}).Create(&comp).Error
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

// MarkIncomplete clears the completed flag. Rows with accumulated time
// are kept so the history survives; rows without any are deleted
// outright. Missing rows are a no-op.
func (r *CompletionRepository) MarkIncomplete(ctx context.Context, taskID uint, date string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comp model.TaskCompletion
		err := tx.Where("task_id = ? AND completion_date = ?", taskID, date).First(&comp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find completion: %w", err)
		}
		if comp.TimeSpent > 0 {
			return tx.Model(&comp).Updates(map[string]interface{}{
				"completed":    false,
				"completed_at": nil,
			}).Error
		}
		return tx.Delete(&comp).Error
	})
}

// BeginTimer upserts the row with last_start = now. Starting always
// forces completed = false so a stale flag from a previous cycle cannot
// linger on a running occurrence.
func (r *CompletionRepository) BeginTimer(ctx context.Context, taskID uint, date string, now time.Time) error {
	comp := model.TaskCompletion{
		TaskID:         taskID,
		CompletionDate: date,
		LastStart:      &now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_id"}, {Name: "completion_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_start": now,
			"completed":  false,
		}),
	}).Create(&comp).Error
	if err != nil {
		return fmt.Errorf("begin occurrence timer: %w", err)
	}
	return nil
}

// CloseTimer banks the elapsed whole seconds for (task, date) and clears
// last_start, inside one transaction. Absent rows and stopped timers
// report the current total unchanged.
func (r *CompletionRepository) CloseTimer(ctx context.Context, taskID uint, date string, now time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comp model.TaskCompletion
		err := tx.Where("task_id = ? AND completion_date = ?", taskID, date).First(&comp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find completion: %w", err)
		}
		total = comp.TimeSpent
		if comp.LastStart == nil {
			return nil
		}
		delta := int64(now.Sub(*comp.LastStart).Seconds())
		if delta < 0 {
			delta = 0
		}
		total += delta
		return tx.Model(&comp).Updates(map[string]interface{}{
			"time_spent": total,
			"last_start": nil,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListRunning returns completion rows with a running occurrence timer.
func (r *CompletionRepository) ListRunning(ctx context.Context) ([]model.TaskCompletion, error) {
	var comps []model.TaskCompletion
	if err := r.db.WithContext(ctx).Where("last_start IS NOT NULL").Find(&comps).Error; err != nil {
		return nil, fmt.Errorf("list running completions: %w", err)
	}
	return comps, nil
}
