package service

import (
	"context"

	"taskagent/internal/model"
	"taskagent/internal/repository"
)

// ClientService provides helpers around clients.
type ClientService struct {
	repo *repository.ClientRepository
}

func NewClientService(repo *repository.ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

func (s *ClientService) List(ctx context.Context) ([]model.Client, error) {
	return s.repo.List(ctx)
}

func (s *ClientService) Create(ctx context.Context, name string) (*model.Client, error) {
	if name == "" {
		return nil, invalidf("name is required")
	}
	client := model.Client{Name: name}
	if err := s.repo.Create(ctx, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) Rename(ctx context.Context, id uint, name string) error {
	if name == "" {
		return invalidf("name is required")
	}
	affected, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the client; its projects are kept and detached.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
