package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/api/handler/response"
	"github.com/AppKaki/blockly-ulisp/internal/api/repo"
	"github.com/AppKaki/blockly-ulisp/internal/api/service"
	"github.com/AppKaki/blockly-ulisp/internal/gen"
)

// writeError maps service and generator errors to a status code.
func writeError(c *gin.Context, logger zerolog.Logger, err error, msg string) {
	var genErr *gen.GenerationError
	switch {
	case errors.Is(err, service.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
	case errors.Is(err, repo.ErrWorkspaceNotFound):
		c.JSON(http.StatusNotFound, response.APIError{Message: "Workspace not found"})
	case errors.As(err, &genErr):
		c.JSON(http.StatusUnprocessableEntity, response.APIError{
			Message: genErr.Error(),
			Data:    response.BlockFailure{BlockID: genErr.BlockID, BlockType: genErr.BlockType},
		})
	case errors.Is(err, gen.ErrUnhandledDispatch), errors.Is(err, gen.ErrUnhandledOption), errors.Is(err, gen.ErrBlockShape):
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
	default:
		logger.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, response.APIError{Message: msg})
	}
}
