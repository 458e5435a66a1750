package service

import (
	"context"

	"taskagent/internal/model"
	"taskagent/internal/repository"
)

// ProjectService provides helpers around projects.
type ProjectService struct {
	repo *repository.ProjectRepository
}

func NewProjectService(repo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) List(ctx context.Context) ([]repository.ProjectWithClient, error) {
	return s.repo.List(ctx)
}

func (s *ProjectService) Create(ctx context.Context, name string, clientID *uint) (*model.Project, error) {
	if name == "" {
		return nil, invalidf("name is required")
	}
	project := model.Project{Name: name, ClientID: clientID}
	if err := s.repo.Create(ctx, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Update(ctx context.Context, id uint, name string, clientID *uint) error {
	if name == "" {
		return invalidf("name is required")
	}
	affected, err := s.repo.Update(ctx, id, name, clientID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project; its tasks are kept and detached.
func (s *ProjectService) Delete(ctx context.Context, id uint) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
