package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"

	ulisp "github.com/AppKaki/blockly-ulisp"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/endpoints"
	"github.com/AppKaki/blockly-ulisp/internal/api/handler/middleware"
	"github.com/AppKaki/blockly-ulisp/internal/api/models"
	"github.com/AppKaki/blockly-ulisp/internal/api/repo"
	"github.com/AppKaki/blockly-ulisp/internal/api/service"
	"github.com/AppKaki/blockly-ulisp/internal/api/websocket"
	"github.com/AppKaki/blockly-ulisp/internal/events"
	"github.com/AppKaki/blockly-ulisp/pkg"
)

func main() {
	ulisp.InitConfig("")
	config := ulisp.GetConfig()
	gin.SetMode(gin.ReleaseMode)

	if config.Mode == "dev" {
		if ulisp.DB != nil {
			if err := ulisp.DB.AutoMigrate(&models.StoredWorkspace{}); err != nil {
				ulisp.Logger.Fatal().Err(err).Msg("Failed to migrate database")
			}
			ulisp.Logger.Info().Msg("Database migrated successfully")
		}
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(config.ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	hub := websocket.NewHub(ulisp.Logger)
	go hub.Run(ctx)
	ulisp.Logger.Info().Msg("WebSocket hub started")

	initAPI(router, config, hub)

	ulisp.Logger.Debug().Msgf("Starting generator API on port %s", config.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		ulisp.Logger.Fatal().Msg(err.Error())
	}
}

func initAPI(router *graceful.Graceful, config ulisp.AppConfig, hub *websocket.Hub) {
	var opts []service.GenerationOption
	if ulisp.Redis != nil {
		opts = append(opts, service.WithCache(pkg.NewRedisCache(ulisp.Redis, config.RedisConfig.TTL)))
	}
	if ulisp.Nats != nil {
		opts = append(opts, service.WithPublisher(events.NewNATSPublisher(ulisp.Nats, config.NatsConfig.Subject)))
	}
	generation := service.NewGenerationService(ulisp.Logger, config.GeneratorOptions(), opts...)

	guard := middleware.AuthMiddleware(config.JWTConfig.Secret)

	endpoints.HealthHandler(router)
	endpoints.GenerateHandler(router, generation, ulisp.Logger)
	endpoints.PreviewHandler(router, hub, generation, ulisp.Logger, guard)
	if ulisp.DB != nil {
		workspaces := service.NewWorkspaceService(ulisp.Logger, repo.NewWorkspaceRepository(ulisp.DB), generation)
		endpoints.WorkspaceHandler(router, workspaces, ulisp.Logger, guard)
	}
}
