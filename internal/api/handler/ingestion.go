package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
	"github.com/timmy/pokedex/internal/service"
)

const maxOffset = math.MaxInt32

// GenerationSyncer runs a generation sync to completion.
type GenerationSyncer interface {
	SyncGeneration(ctx context.Context, gen int) (*domain.IngestionRun, error)
}

// StatsBackfiller recomputes stats vectors.
type StatsBackfiller interface {
	BackfillStatsVector(ctx context.Context, batchSize int) (*service.BackfillResult, error)
}

// SpriteMirror copies sprites into object storage.
type SpriteMirror interface {
	MirrorSprites(ctx context.Context, batchSize int) (*service.MirrorStats, error)
}

// RunReader lists ingestion runs and their errors.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*domain.IngestionRun, error)
	ListRuns(ctx context.Context, limit, offset int) (*repository.RunPage, error)
	ListRunErrors(ctx context.Context, runID string, limit, offset int) (*repository.RunErrorPage, error)
}

// IngestionHandler serves the admin ingestion endpoints.
type IngestionHandler struct {
	syncer   GenerationSyncer
	backfill StatsBackfiller
	mirror   SpriteMirror // nil when object storage is disabled
	runs     RunReader
	logger   *logger.Logger
}

// NewIngestionHandler creates a new ingestion handler.
// Parameters:
//   - syncer: generation sync service.
//   - backfill: stats vector backfill service.
//   - mirror: sprite mirror service, nil to disable the endpoint.
//   - runs: run tracker reads.
//   - log: logger instance.
//
// Returns:
//   - *IngestionHandler: initialized handler.
func NewIngestionHandler(syncer GenerationSyncer, backfill StatsBackfiller, mirror SpriteMirror, runs RunReader, log *logger.Logger) *IngestionHandler {
	return &IngestionHandler{
		syncer:   syncer,
		backfill: backfill,
		mirror:   mirror,
		runs:     runs,
		logger:   log,
	}
}

// log returns a logger from the request context if available, otherwise the handler's logger
func (h *IngestionHandler) log(c *gin.Context) *logger.Logger {
	if l := logger.FromContext(c.Request.Context()); l != nil {
		return l
	}
	return h.logger
}

// SyncGeneration handles POST /v1/admin/ingestion/pokedex/sync?generation=N.
// The sync runs on a context detached from the request so a client
// disconnect does not leave a run half processed.
func (h *IngestionHandler) SyncGeneration(c *gin.Context) {
	raw := c.Query("generation")
	gen, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "generation must be an integer")
		return
	}

	h.log(c).WithField(logger.FieldGeneration, gen).Info("Generation sync requested")
	ctx := context.WithoutCancel(c.Request.Context())
	run, err := h.syncer.SyncGeneration(ctx, gen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// BackfillStatsVector handles POST /v1/admin/ingestion/pokedex/backfill-stats-vector?batchSize=N.
func (h *IngestionHandler) BackfillStatsVector(c *gin.Context) {
	batchSize, ok := intQuery(c, "batchSize", 0, service.MinBackfillBatchSize, service.MaxBackfillBatchSize)
	if !ok {
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.backfill.BackfillStatsVector(ctx, batchSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MirrorSprites handles POST /v1/admin/ingestion/pokedex/mirror-sprites?batchSize=N.
func (h *IngestionHandler) MirrorSprites(c *gin.Context) {
	if h.mirror == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
		return
	}
	batchSize, ok := intQuery(c, "batchSize", 0, 1, 1000)
	if !ok {
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	stats, err := h.mirror.MirrorSprites(ctx, batchSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListRuns handles GET /v1/admin/ingestion/runs?limit&offset.
func (h *IngestionHandler) ListRuns(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20, 1, 200)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0, 0, maxOffset)
	if !ok {
		return
	}

	page, err := h.runs.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListRunErrors handles GET /v1/admin/ingestion/runs/:id/errors?limit&offset.
func (h *IngestionHandler) ListRunErrors(c *gin.Context) {
	runID := c.Param("id")
	limit, ok := intQuery(c, "limit", 50, 1, 200)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0, 0, maxOffset)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.runs.GetRun(ctx, runID); err != nil {
		respondError(c, err)
		return
	}
	page, err := h.runs.ListRunErrors(ctx, runID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
