package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AppKaki/blockly-ulisp/internal/api/models"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

type WorkspaceRepository struct {
	Db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{
		Db: db,
	}
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.StoredWorkspace) error {
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	return r.Db.WithContext(ctx).Create(ws).Error
}

func (r *WorkspaceRepository) FindAll(ctx context.Context) ([]models.StoredWorkspace, error) {
	var entities []models.StoredWorkspace
	if err := r.Db.WithContext(ctx).Order("created_at").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *WorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.StoredWorkspace, error) {
	var entity models.StoredWorkspace
	err := r.Db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.Db.WithContext(ctx).Delete(&models.StoredWorkspace{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}
