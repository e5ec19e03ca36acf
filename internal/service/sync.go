package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
	"github.com/timmy/pokedex/internal/source"
)

const defaultCheckpointEvery = 10

// RunTracker persists run lifecycle, progress counters and item errors.
type RunTracker interface {
	StartRun(ctx context.Context, in repository.StartRunInput) (*domain.IngestionRun, error)
	MarkProgress(ctx context.Context, runID string, success, failed int) error
	AddError(ctx context.Context, runID, entity, key, message string) error
	FinishRun(ctx context.Context, runID string, status domain.RunStatus, success, failed int) (*domain.IngestionRun, error)
}

// CatalogWriter applies one upstream record to the catalog.
type CatalogWriter interface {
	UpsertPokemon(ctx context.Context, rec *source.PokemonRecord) error
}

// SyncConfig holds configuration for the sync service
type SyncConfig struct {
	CheckpointEvery int
}

// SyncService runs one generation through fetch, upsert and run tracking.
type SyncService struct {
	resolver        *RangeResolver
	tracker         RunTracker
	source          source.Source
	catalog         CatalogWriter
	logger          *logger.Logger
	checkpointEvery int
}

// NewSyncService creates a new sync service
func NewSyncService(
	resolver *RangeResolver,
	tracker RunTracker,
	src source.Source,
	catalog CatalogWriter,
	log *logger.Logger,
	cfg *SyncConfig,
) *SyncService {
	every := defaultCheckpointEvery
	if cfg != nil && cfg.CheckpointEvery > 0 {
		every = cfg.CheckpointEvery
	}
	return &SyncService{
		resolver:        resolver,
		tracker:         tracker,
		source:          src,
		catalog:         catalog,
		logger:          log,
		checkpointEvery: every,
	}
}

func (s *SyncService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SyncGeneration synchronizes every dex id of a generation, in ascending order and one at a time.
// A failed item is recorded and skipped; the run always ends closed with
// success+failed equal to the range size. Invalid or unknown generations
// return before a run is started. Tracker write failures abort the run.
func (s *SyncService) SyncGeneration(ctx context.Context, gen int) (*domain.IngestionRun, error) {
	genID, err := domain.NewGenerationID(gen)
	if err != nil {
		return nil, err
	}
	rng, err := s.resolver.Resolve(ctx, genID)
	if err != nil {
		return nil, err
	}

	// Tracker writes must land even after the caller cancels.
	trackCtx := context.WithoutCancel(ctx)

	run, err := s.tracker.StartRun(trackCtx, repository.StartRunInput{
		Source:     s.source.GetSourceID(),
		Generation: gen,
		Range:      rng,
	})
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	ctx = logger.SetRunID(ctx, run.ID)
	ctx = logger.SetGeneration(ctx, gen)
	ctx = logger.SetSource(ctx, run.Source)
	trackCtx = context.WithoutCancel(ctx)
	start := time.Now()

	s.log(ctx).WithFields(logger.Fields{
		"range_from": rng.From,
		"range_to":   rng.To,
		"total":      run.ItemsTotal,
	}).Info("Starting generation sync")

	success, failed := 0, 0
	next := rng.From
	for ; next <= rng.To; next++ {
		if ctx.Err() != nil {
			break
		}

		if err := s.syncOne(ctx, next); err != nil {
			if ctx.Err() != nil {
				// interrupted item joins the canceled remainder
				break
			}
			failed++
			s.log(ctx).WithField(logger.FieldDexID, next).WithError(err).Warn("Item sync failed")
			if err := s.tracker.AddError(trackCtx, run.ID, domain.ErrorEntityPokemon, strconv.Itoa(next), err.Error()); err != nil {
				return s.abort(trackCtx, run, success, err)
			}
		} else {
			success++
		}

		if (next-rng.From+1)%s.checkpointEvery == 0 {
			if err := s.tracker.MarkProgress(trackCtx, run.ID, success, failed); err != nil {
				return s.abort(trackCtx, run, success, err)
			}
		}
	}

	if next <= rng.To {
		remaining := rng.To - next + 1
		failed += remaining
		s.log(ctx).WithField("remaining", remaining).Warn("Generation sync canceled")
		key := domain.DexRange{From: next, To: rng.To}.String()
		if err := s.tracker.AddError(trackCtx, run.ID, domain.ErrorEntityRun, key, "run canceled"); err != nil {
			return s.abort(trackCtx, run, success, err)
		}
	}

	status := domain.RunStatusSuccess
	if failed > 0 {
		status = domain.RunStatusFailed
	}
	closed, err := s.tracker.FinishRun(trackCtx, run.ID, status, success, failed)
	if err != nil {
		return nil, fmt.Errorf("finish run %s: %w", run.ID, err)
	}

	logger.With(logger.Fields{logger.FieldRunID: run.ID}).
		WithRunCounts(success, failed).
		WithStatus(string(status)).
		WithElapsed(start).
		Info(ctx, "Generation sync finished")

	return closed, nil
}

func (s *SyncService) syncOne(ctx context.Context, dexID int) error {
	rec, err := s.source.FetchPokemon(ctx, dexID)
	if err != nil {
		return err
	}
	return s.catalog.UpsertPokemon(ctx, rec)
}

// abort closes the run FAILED with every unprocessed item counted as failed
// and returns the storage error that stopped it.
func (s *SyncService) abort(ctx context.Context, run *domain.IngestionRun, success int, cause error) (*domain.IngestionRun, error) {
	if _, err := s.tracker.FinishRun(ctx, run.ID, domain.RunStatusFailed, success, run.ItemsTotal-success); err != nil {
		s.log(ctx).WithError(err).Error("Failed to close aborted run")
	}
	return nil, fmt.Errorf("sync run %s aborted: %w", run.ID, cause)
}
