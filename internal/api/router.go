package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/api/handler"
	"github.com/timmy/pokedex/internal/api/middleware"
	"github.com/timmy/pokedex/internal/logger"
)

// RouterConfig holds the handlers and settings the router is built from.
type RouterConfig struct {
	Mode      string
	CORS      middleware.CORSConfig
	Logger    *logger.Logger
	Health    *handler.HealthHandler
	Ingestion *handler.IngestionHandler
	Pokedex   *handler.PokedexHandler
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/health", cfg.Health.Health)
	r.GET("/ready", cfg.Health.Ready)

	v1 := r.Group("/v1")
	{
		v1.GET("/generations", cfg.Pokedex.ListGenerations)

		// Pokemon
		v1.GET("/pokemon/suggest", cfg.Pokedex.Suggest)
		v1.GET("/pokemon/:dexId", cfg.Pokedex.GetPokemon)
		v1.GET("/pokemon/:dexId/similar", cfg.Pokedex.Similar)

		// Ingestion admin
		admin := v1.Group("/admin/ingestion")
		{
			admin.POST("/pokedex/sync", cfg.Ingestion.SyncGeneration)
			admin.POST("/pokedex/backfill-stats-vector", cfg.Ingestion.BackfillStatsVector)
			admin.POST("/pokedex/mirror-sprites", cfg.Ingestion.MirrorSprites)
			admin.GET("/runs", cfg.Ingestion.ListRuns)
			admin.GET("/runs/:id/errors", cfg.Ingestion.ListRunErrors)
		}
	}

	return r
}
