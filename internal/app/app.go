package app

import (
	"context"
	"fmt"

	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
	"github.com/timmy/pokedex/internal/service"
	"github.com/timmy/pokedex/internal/source/pokeapi"
	"github.com/timmy/pokedex/internal/storage"
	"gorm.io/gorm"
)

// App holds the wired repositories and services shared by the api and ingest binaries.
type App struct {
	DB          *gorm.DB
	Generations *repository.GenerationRepository
	Runs        *repository.IngestionRunRepository
	Pokemon     *repository.PokemonRepository

	Sync       *service.SyncService
	Backfill   *service.BackfillService
	Similarity *service.SimilarityService
	Sprites    *service.SpriteMirrorService // nil when storage is disabled

	qdrant *repository.QdrantRepository
}

// New connects every configured dependency and builds the services.
// Parameters:
//   - ctx: context used for startup checks (Qdrant collection, bucket).
//   - cfg: loaded configuration.
//   - log: base logger handed to services.
//
// Returns:
//   - *App: wired application; call Close when done.
//   - error: non-nil if any dependency fails to initialize.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a := &App{
		DB:          db,
		Generations: repository.NewGenerationRepository(db),
		Runs:        repository.NewIngestionRunRepository(db),
		Pokemon:     repository.NewPokemonRepository(db),
	}
	statsVectors := repository.NewStatsVectorRepository(db)

	if cfg.Qdrant.Enabled {
		a.qdrant, err = repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init qdrant: %w", err)
		}
		if err := a.qdrant.EnsureCollection(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure qdrant collection: %w", err)
		}
	}

	client := pokeapi.NewClient(&pokeapi.Config{
		BaseURL:           cfg.PokeAPI.BaseURL,
		Timeout:           cfg.PokeAPI.Timeout,
		RequestsPerSecond: cfg.PokeAPI.RequestsPerSecond,
		UserAgent:         cfg.PokeAPI.UserAgent,
		MaxDownloadBytes:  cfg.PokeAPI.MaxDownloadBytes,
	})

	a.Sync = service.NewSyncService(
		service.NewRangeResolver(a.Generations),
		a.Runs,
		client,
		repository.NewPokedexUpsertRepository(db),
		log,
		&service.SyncConfig{CheckpointEvery: cfg.Ingest.CheckpointEvery},
	)

	var sink service.VectorSink
	if a.qdrant != nil {
		sink = a.qdrant
	}
	a.Backfill = service.NewBackfillService(statsVectors, sink, log)

	boost, err := service.NewBoostPolicy(cfg.Similarity.Boost)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Similarity = service.NewSimilarityService(a.Pokemon, a.neighborIndex(cfg, db, statsVectors), boost, log)

	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
		if s3, ok := objectStorage.(*storage.S3Storage); ok {
			if err := s3.EnsureBucket(ctx); err != nil {
				a.Close()
				return nil, fmt.Errorf("ensure bucket: %w", err)
			}
		}
		a.Sprites = service.NewSpriteMirrorService(a.Pokemon, client, objectStorage, log)
	}

	return a, nil
}

func (a *App) neighborIndex(cfg *config.Config, db *gorm.DB, statsVectors *repository.StatsVectorRepository) service.NeighborIndex {
	switch cfg.Similarity.Index {
	case "pgvector":
		return repository.NewPgVectorIndex(db)
	case "scan":
		return repository.NewScanIndex(statsVectors)
	case "qdrant":
		return a.qdrant
	}
	switch {
	case a.qdrant != nil:
		return a.qdrant
	case cfg.Database.Driver == "postgres":
		return repository.NewPgVectorIndex(db)
	default:
		return repository.NewScanIndex(statsVectors)
	}
}

// Close releases the database pool and the Qdrant connection.
func (a *App) Close() {
	if a.qdrant != nil {
		_ = a.qdrant.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
