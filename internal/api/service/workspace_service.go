package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/api/models"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
)

// WorkspaceStore persists workspace documents. repo.WorkspaceRepository
// implements it.
type WorkspaceStore interface {
	Create(ctx context.Context, ws *models.StoredWorkspace) error
	FindAll(ctx context.Context) ([]models.StoredWorkspace, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StoredWorkspace, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type WorkspaceService struct {
	logger     zerolog.Logger
	store      WorkspaceStore
	generation *GenerationService
}

func NewWorkspaceService(logger zerolog.Logger, store WorkspaceStore, generation *GenerationService) *WorkspaceService {
	return &WorkspaceService{
		logger:     logger,
		store:      store,
		generation: generation,
	}
}

// Create stores a document after checking that it loads.
func (s *WorkspaceService) Create(ctx context.Context, ws models.StoredWorkspace) (*models.StoredWorkspace, error) {
	format := workspace.Format(ws.Format)
	if format == "" {
		format = workspace.FormatJSON
		ws.Format = string(format)
	}
	loaded, err := workspace.Load(format, ws.Content(), ws.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := workspace.Validate(loaded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := s.store.Create(ctx, &ws); err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", ws.ID.String()).Str("name", ws.Name).Msg("Workspace stored")
	return &ws, nil
}

func (s *WorkspaceService) FindAll(ctx context.Context) ([]models.StoredWorkspace, error) {
	return s.store.FindAll(ctx)
}

func (s *WorkspaceService) FindByID(ctx context.Context, id uuid.UUID) (*models.StoredWorkspace, error) {
	return s.store.FindByID(ctx, id)
}

func (s *WorkspaceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Generate runs the generation service on a stored document.
// overrides follows GenerateInput.Overrides.
func (s *WorkspaceService) Generate(ctx context.Context, id uuid.UUID, overrides json.RawMessage) (*GenerateOutput, error) {
	ws, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.generation.Generate(ctx, GenerateInput{
		Format:    workspace.Format(ws.Format),
		Document:  ws.Content(),
		Overrides: overrides,
	})
}
