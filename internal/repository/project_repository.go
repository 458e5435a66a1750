package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskagent/internal/model"
)

// ProjectWithClient is a project row joined with its client's name.
type ProjectWithClient struct {
	model.Project
	ClientName *string `json:"client_name"`
}

// ProjectRepository handles CRUD for projects.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]ProjectWithClient, error) {
	var rows []ProjectWithClient
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Select("projects.*, clients.name AS client_name").
		Joins("LEFT JOIN clients ON clients.id = projects.client_id").
		Order("projects.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return rows, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id uint, name string, clientID *uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":      name,
		"client_id": clientID,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("update project: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes a project after detaching its tasks; tasks survive with
// a null project reference, never cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detach tasks: %w", err)
		}
		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete project: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}
