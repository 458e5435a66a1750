package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskagent/internal/model"
)

// HiddenDateRepository handles the suppressed-occurrence markers of
// recurring tasks.
type HiddenDateRepository struct {
	db *gorm.DB
}

func NewHiddenDateRepository(db *gorm.DB) *HiddenDateRepository {
	return &HiddenDateRepository{db: db}
}

// Hide inserts a marker for (task, date). Duplicates are silently
// ignored; hiding an already-hidden date is success.
func (r *HiddenDateRepository) Hide(ctx context.Context, taskID uint, date string) error {
	hidden := model.HiddenDate{TaskID: taskID, HiddenDate: date}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&hidden).Error
	if err != nil {
		return fmt.Errorf("hide occurrence: %w", err)
	}
	return nil
}

func (r *HiddenDateRepository) ListAll(ctx context.Context) ([]model.HiddenDate, error) {
	var dates []model.HiddenDate
	if err := r.db.WithContext(ctx).Order("hidden_date DESC").Find(&dates).Error; err != nil {
		return nil, fmt.Errorf("list hidden dates: %w", err)
	}
	return dates, nil
}

// SetByTask returns every hidden date grouped by task id, for evaluating
// occurrence rules over a whole task list in one round trip.
func (r *HiddenDateRepository) SetByTask(ctx context.Context) (map[uint]map[string]bool, error) {
	dates, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]map[string]bool)
	for _, d := range dates {
		if set[d.TaskID] == nil {
			set[d.TaskID] = make(map[string]bool)
		}
		set[d.TaskID][d.HiddenDate] = true
	}
	return set, nil
}

// IsHidden reports whether (task, date) has been suppressed.
func (r *HiddenDateRepository) IsHidden(ctx context.Context, taskID uint, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.HiddenDate{}).
		Where("task_id = ? AND hidden_date = ?", taskID, date).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check hidden date: %w", err)
	}
	return count > 0, nil
}
