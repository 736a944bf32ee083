package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/api/handler/mapper"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/request"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/response"
	"github.com/AppKaki/blockly-ulisp/internal/api/service"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
	"github.com/AppKaki/blockly-ulisp/pkg"
)

type generateHandler struct {
	generation *service.GenerationService
	mapper     mapper.WorkspaceMapper
	logger     zerolog.Logger
}

func GenerateHandler(router gin.IRouter, generation *service.GenerationService, logger zerolog.Logger) {
	h := &generateHandler{
		generation: generation,
		mapper:     mapper.NewWorkspaceMapper(),
		logger:     logger,
	}

	routes := router.Group("/api/v1")
	{
		routes.POST("/generate", h.generate)
	}
}

// generate turns an inline workspace document into program text
func (slf *generateHandler) generate(c *gin.Context) {
	var req request.Generate
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
		return
	}

	out, err := slf.generation.Generate(c.Request.Context(), service.GenerateInput{
		Format:    workspace.Format(req.Format),
		Document:  req.Document(),
		Overrides: req.Options,
	})
	if err != nil {
		writeError(c, slf.logger, err, "Failed to generate program")
		return
	}

	c.JSON(http.StatusOK, slf.mapper.ToGenerate(out))
}
