package mapper

import (
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/request"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/response"
	"github.com/AppKaki/blockly-ulisp/internal/api/models"
	"github.com/AppKaki/blockly-ulisp/internal/api/service"
)

// WorkspaceMapper handles mapping between workspace models and DTOs
type WorkspaceMapper interface {
	CreateWorkspace(req request.CreateWorkspace) models.StoredWorkspace
	ToWorkspace(ws models.StoredWorkspace) response.Workspace
	ToWorkspaces(list []models.StoredWorkspace) []response.Workspace
	ToGenerate(out *service.GenerateOutput) response.Generate
}

type WorkspaceMapperImpl struct{}

func NewWorkspaceMapper() WorkspaceMapper {
	return &WorkspaceMapperImpl{}
}

func (m *WorkspaceMapperImpl) CreateWorkspace(req request.CreateWorkspace) models.StoredWorkspace {
	ws := models.StoredWorkspace{
		Name:   req.Name,
		Format: req.Format,
	}
	if req.Format == "hcl" {
		ws.Source = req.Source
	} else {
		ws.Document = models.Document(req.Workspace)
	}
	return ws
}

func (m *WorkspaceMapperImpl) ToWorkspace(ws models.StoredWorkspace) response.Workspace {
	out := response.Workspace{
		ID:        ws.ID.String(),
		Name:      ws.Name,
		Format:    ws.Format,
		Source:    ws.Source,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
	if len(ws.Document) > 0 {
		out.Workspace = []byte(ws.Document)
	}
	return out
}

func (m *WorkspaceMapperImpl) ToWorkspaces(list []models.StoredWorkspace) []response.Workspace {
	out := make([]response.Workspace, 0, len(list))
	for _, ws := range list {
		out = append(out, m.ToWorkspace(ws))
	}
	return out
}

func (m *WorkspaceMapperImpl) ToGenerate(out *service.GenerateOutput) response.Generate {
	res := response.Generate{
		Code:   out.Result.Code,
		Digest: out.Digest,
		Cached: out.Cached,
	}
	res.Names = out.Result.Names
	res.Definitions = out.Result.Definitions
	return res
}
