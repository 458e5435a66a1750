package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskagent/internal/model"
)

// TaskWithRefs is a task row joined with the names of its project and
// that project's client, as the list endpoints return it.
type TaskWithRefs struct {
	model.Task
	ProjectName *string `json:"project_name"`
	ClientName  *string `json:"client_name"`
}

// TaskRepository handles persistence for task definitions.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListWithRefs returns all tasks with project and client names joined in,
// newest first.
func (r *TaskRepository) ListWithRefs(ctx context.Context) ([]TaskWithRefs, error) {
	var rows []TaskWithRefs
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.*, projects.name AS project_name, clients.name AS client_name").
		Joins("LEFT JOIN projects ON projects.id = tasks.project_id").
		Joins("LEFT JOIN clients ON clients.id = projects.client_id").
		Order("tasks.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return rows, nil
}

// Update overwrites the editable fields of a task. Zero-value fields are
// written too, so the caller provides the full intended state.
func (r *TaskRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TaskRepository) SetStartDate(ctx context.Context, id uint, date string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Update("start_date", date)
	if res.Error != nil {
		return 0, fmt.Errorf("set start date: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TaskRepository) SetEndDate(ctx context.Context, id uint, date string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Update("end_date", date)
	if res.Error != nil {
		return 0, fmt.Errorf("set end date: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the task row; completions and hidden dates go with it
// via the foreign-key cascade.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// BeginTimer stamps last_start, but only when no timer is running. A zero
// row count means the task is absent or already running; the caller
// disambiguates.
func (r *TaskRepository) BeginTimer(ctx context.Context, id uint, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND last_start IS NULL", id).
		Update("last_start", now)
	if res.Error != nil {
		return 0, fmt.Errorf("begin timer: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CloseTimer banks the elapsed whole seconds into time_spent and clears
// last_start, inside one transaction. When no timer is running it leaves
// the row alone. Returns the new cumulative time_spent.
func (r *TaskRepository) CloseTimer(ctx context.Context, id uint, now time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, id).Error; err != nil {
			return err
		}
		total = task.TimeSpent
		if task.LastStart == nil {
			return nil
		}
		delta := int64(now.Sub(*task.LastStart).Seconds())
		if delta < 0 {
			delta = 0
		}
		total += delta
		return tx.Model(&task).Updates(map[string]interface{}{
			"time_spent": total,
			"last_start": nil,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListRunning returns tasks whose one-off timer is currently running.
func (r *TaskRepository) ListRunning(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("last_start IS NOT NULL").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list running tasks: %w", err)
	}
	return tasks, nil
}
