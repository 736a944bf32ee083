package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/api/handler/mapper"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/request"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/response"
	"github.com/AppKaki/blockly-ulisp/internal/api/service"
	"github.com/AppKaki/blockly-ulisp/pkg"
)

type workspaceHandler struct {
	workspaces *service.WorkspaceService
	mapper     mapper.WorkspaceMapper
	logger     zerolog.Logger
}

func WorkspaceHandler(router gin.IRouter, workspaces *service.WorkspaceService, logger zerolog.Logger, guard ...gin.HandlerFunc) {
	h := &workspaceHandler{
		workspaces: workspaces,
		mapper:     mapper.NewWorkspaceMapper(),
		logger:     logger,
	}

	routes := router.Group("/api/v1/workspaces")
	routes.Use(guard...)
	{
		routes.GET("", h.getAll)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.DELETE("/:id", h.delete)

		routes.POST("/:id/generate", h.generate)
	}
}

// parseID answers 404 for ids that cannot name a stored workspace
func (slf *workspaceHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Workspace not found"})
		return uuid.Nil, false
	}
	return id, true
}

func (slf *workspaceHandler) getAll(c *gin.Context) {
	list, err := slf.workspaces.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve workspaces")
		return
	}
	c.JSON(http.StatusOK, slf.mapper.ToWorkspaces(list))
}

func (slf *workspaceHandler) getByID(c *gin.Context) {
	id, ok := slf.parseID(c)
	if !ok {
		return
	}
	ws, err := slf.workspaces.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to retrieve workspace")
		return
	}
	c.JSON(http.StatusOK, slf.mapper.ToWorkspace(*ws))
}

func (slf *workspaceHandler) create(c *gin.Context) {
	var req request.CreateWorkspace
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
		return
	}

	ws, err := slf.workspaces.Create(c.Request.Context(), slf.mapper.CreateWorkspace(req))
	if err != nil {
		writeError(c, slf.logger, err, "Failed to store workspace")
		return
	}
	c.JSON(http.StatusCreated, slf.mapper.ToWorkspace(*ws))
}

func (slf *workspaceHandler) delete(c *gin.Context) {
	id, ok := slf.parseID(c)
	if !ok {
		return
	}
	if err := slf.workspaces.Delete(c.Request.Context(), id); err != nil {
		writeError(c, slf.logger, err, "Failed to delete workspace")
		return
	}
	c.Status(http.StatusNoContent)
}

// generate runs a stored workspace. The body is optional.
func (slf *workspaceHandler) generate(c *gin.Context) {
	id, ok := slf.parseID(c)
	if !ok {
		return
	}
	var req request.GenerateStored
	if c.Request.ContentLength != 0 {
		if err := pkg.ParseAndValidate(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
			return
		}
	}

	out, err := slf.workspaces.Generate(c.Request.Context(), id, req.Options)
	if err != nil {
		writeError(c, slf.logger, err, "Failed to generate program")
		return
	}
	c.JSON(http.StatusOK, slf.mapper.ToGenerate(out))
}
