package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskagent/internal/model"
)

// ClientRepository handles CRUD for clients.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (r *ClientRepository) UpdateName(ctx context.Context, id uint, name string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return 0, fmt.Errorf("update client: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes a client after detaching its projects; projects survive
// with a null client reference.
func (r *ClientRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Project{}).
			Where("client_id = ?", id).
			Update("client_id", nil).Error; err != nil {
			return fmt.Errorf("detach projects: %w", err)
		}
		res := tx.Delete(&model.Client{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete client: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}
