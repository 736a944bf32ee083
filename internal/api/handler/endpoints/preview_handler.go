package endpoints

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AppKaki/blockly-ulisp/internal/api/handler/mapper"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/request"
	"github.com/AppKaki/blockly-ulisp/internal/api/service"
	"github.com/AppKaki/blockly-ulisp/internal/api/websocket"
	"github.com/AppKaki/blockly-ulisp/internal/workspace"
	"github.com/AppKaki/blockly-ulisp/pkg"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type previewHandler struct {
	hub        *websocket.Hub
	generation *service.GenerationService
	mapper     mapper.WorkspaceMapper
	logger     zerolog.Logger
}

// PreviewHandler serves live generation over websockets. Every client in a
// room receives the program generated from any member's workspace.
func PreviewHandler(router gin.IRouter, hub *websocket.Hub, generation *service.GenerationService, logger zerolog.Logger, guard ...gin.HandlerFunc) {
	h := &previewHandler{
		hub:        hub,
		generation: generation,
		mapper:     mapper.NewWorkspaceMapper(),
		logger:     logger,
	}

	routes := router.Group("/api/v1/ws")
	routes.Use(guard...)
	{
		routes.GET("/preview/:room", h.handleWebSocket)
		routes.GET("/stats", h.getRoomStats)
	}
}

func (slf *previewHandler) handleWebSocket(c *gin.Context) {
	room := c.Param("room")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	clientID := uuid.New().String()
	client := websocket.NewClient(clientID, room, slf.hub, conn, websocket.ProcessorFunc(slf.process), slf.logger)
	if !slf.hub.Join(client) {
		slf.logger.Warn().Str("clientId", clientID).Msg("Preview hub stopped, closing connection")
		client.Close()
		return
	}

	slf.logger.Info().Str("clientId", clientID).Str("room", room).Msg("WebSocket connection established")

	go client.WritePump()
	go client.ReadPump()
}

// process decodes a generate request the same way POST /generate does.
func (slf *previewHandler) process(ctx context.Context, data json.RawMessage) (any, error) {
	var req request.Generate
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if err := pkg.Validate(&req); err != nil {
		return nil, err
	}
	out, err := slf.generation.Generate(ctx, service.GenerateInput{
		Format:    workspace.Format(req.Format),
		Document:  req.Document(),
		Overrides: req.Options,
	})
	if err != nil {
		return nil, err
	}
	return slf.mapper.ToGenerate(out), nil
}

func (slf *previewHandler) getRoomStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms": slf.hub.RoomStats(),
	})
}
