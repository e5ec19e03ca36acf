package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/gorm"
)

// IngestionRunRepository records ingestion runs and their per-item errors.
// A run is opened RUNNING and closed exactly once; every write is guarded
// by status = RUNNING so a closed run is never mutated.
type IngestionRunRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIngestionRunRepository creates a new IngestionRunRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *IngestionRunRepository: repository instance bound to db.
func NewIngestionRunRepository(db *gorm.DB) *IngestionRunRepository {
	return &IngestionRunRepository{db: db, now: time.Now}
}

// StartRunInput describes a new run.
type StartRunInput struct {
	Source     string
	Generation int
	Range      domain.DexRange
}

// RunPage is one page of runs plus the total count.
type RunPage struct {
	Total int64                 `json:"total"`
	Items []domain.IngestionRun `json:"items"`
}

// RunErrorPage is one page of run errors plus the total count.
type RunErrorPage struct {
	Total int64                   `json:"total"`
	Items []domain.IngestionError `json:"items"`
}

// StartRun creates a RUNNING run whose total is the size of the range.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - in: source, generation and dex range of the run.
//
// Returns:
//   - *domain.IngestionRun: the persisted run.
//   - error: non-nil if the insert fails.
func (r *IngestionRunRepository) StartRun(ctx context.Context, in StartRunInput) (*domain.IngestionRun, error) {
	now := r.now().UTC()
	run := &domain.IngestionRun{
		ID:         uuid.New().String(),
		Source:     in.Source,
		Status:     domain.RunStatusRunning,
		Generation: in.Generation,
		RangeFrom:  in.Range.From,
		RangeTo:    in.Range.To,
		ItemsTotal: in.Range.Size(),
		StartedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// MarkProgress overwrites the running counters of an open run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - runID: run to update.
//   - success: items processed successfully so far.
//   - failed: items failed so far.
//
// Returns:
//   - error: domain.ErrRunClosed if the run is no longer RUNNING.
func (r *IngestionRunRepository) MarkProgress(ctx context.Context, runID string, success, failed int) error {
	res := r.db.WithContext(ctx).
		Model(&domain.IngestionRun{}).
		Where("id = ? AND status = ?", runID, domain.RunStatusRunning).
		Updates(map[string]interface{}{
			"items_success": success,
			"items_failed":  failed,
			"updated_at":    r.now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.closedOrMissing(ctx, runID)
	}
	return nil
}

// AddError appends one failure record to a run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - runID: owning run.
//   - entity: failed entity kind, e.g. domain.ErrorEntityPokemon.
//   - key: entity key, e.g. the decimal dex id.
//   - message: failure text.
//
// Returns:
//   - error: non-nil if the insert fails.
func (r *IngestionRunRepository) AddError(ctx context.Context, runID, entity, key, message string) error {
	rec := &domain.IngestionError{
		ID:        uuid.New().String(),
		RunID:     runID,
		Entity:    entity,
		EntityKey: key,
		Message:   message,
		CreatedAt: r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to add run error: %w", err)
	}
	return nil
}

// FinishRun closes an open run with its final status and counters in one update.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - runID: run to close.
//   - status: domain.RunStatusSuccess or domain.RunStatusFailed.
//   - success: final success count.
//   - failed: final failure count.
//
// Returns:
//   - *domain.IngestionRun: the closed run.
//   - error: domain.ErrRunClosed if the run was already closed.
func (r *IngestionRunRepository) FinishRun(ctx context.Context, runID string, status domain.RunStatus, success, failed int) (*domain.IngestionRun, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot finish run with status %s", domain.ErrInvalidArgument, status)
	}
	now := r.now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.IngestionRun{}).
		Where("id = ? AND status = ?", runID, domain.RunStatusRunning).
		Updates(map[string]interface{}{
			"status":        status,
			"items_success": success,
			"items_failed":  failed,
			"finished_at":   now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to finish run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.closedOrMissing(ctx, runID)
	}
	return r.GetRun(ctx, runID)
}

// GetRun retrieves a run by ID.
func (r *IngestionRunRepository) GetRun(ctx context.Context, runID string) (*domain.IngestionRun, error) {
	var run domain.IngestionRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns returns runs most recent first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: page size.
//   - offset: rows to skip.
//
// Returns:
//   - *RunPage: total count and the requested page.
//   - error: non-nil if a query fails.
func (r *IngestionRunRepository) ListRuns(ctx context.Context, limit, offset int) (*RunPage, error) {
	page := &RunPage{Items: []domain.IngestionRun{}}
	db := r.db.WithContext(ctx).Model(&domain.IngestionRun{})
	if err := db.Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}

// ListRunErrors returns the errors of one run, newest first.
func (r *IngestionRunRepository) ListRunErrors(ctx context.Context, runID string, limit, offset int) (*RunErrorPage, error) {
	page := &RunErrorPage{Items: []domain.IngestionError{}}
	if err := r.db.WithContext(ctx).
		Model(&domain.IngestionError{}).
		Where("run_id = ?", runID).
		Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}

func (r *IngestionRunRepository) closedOrMissing(ctx context.Context, runID string) error {
	run, err := r.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: run %s is %s", domain.ErrRunClosed, run.ID, run.Status)
}
