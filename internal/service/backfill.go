package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
)

const (
	DefaultBackfillBatchSize = 500
	MinBackfillBatchSize     = 50
	MaxBackfillBatchSize     = 2000
)

// StatsVectorStore reads base stats and persists stats vectors.
type StatsVectorStore interface {
	FeatureRanges(ctx context.Context, features []string) (map[string]repository.FeatureRange, error)
	ListDexIDsAfter(ctx context.Context, afterDexID, limit int) ([]int, error)
	FeatureValues(ctx context.Context, dexIDs []int, features []string) (map[int]map[string]int, error)
	WriteVectors(ctx context.Context, vectors map[int]domain.FeatureVector) error
}

// VectorSink receives every page written by the backfill, e.g. an external vector index.
type VectorSink interface {
	UpsertVectors(ctx context.Context, vectors map[int]domain.FeatureVector) error
}

// BackfillResult reports how many stats vectors were written.
type BackfillResult struct {
	Updated int `json:"updated"`
}

// BackfillService recomputes min-max normalized stats vectors for the whole catalog.
type BackfillService struct {
	store  StatsVectorStore
	sink   VectorSink
	logger *logger.Logger
}

// NewBackfillService creates a new backfill service. sink may be nil.
func NewBackfillService(store StatsVectorStore, sink VectorSink, log *logger.Logger) *BackfillService {
	return &BackfillService{store: store, sink: sink, logger: log}
}

func (s *BackfillService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// ClampBackfillBatchSize maps 0 to the default and clamps into [Min,Max].
func ClampBackfillBatchSize(n int) int {
	switch {
	case n == 0:
		return DefaultBackfillBatchSize
	case n < MinBackfillBatchSize:
		return MinBackfillBatchSize
	case n > MaxBackfillBatchSize:
		return MaxBackfillBatchSize
	}
	return n
}

// NormalizeFeature maps v into [0,1] using the observed range; a degenerate range maps to 0.
func NormalizeFeature(v, lo, hi int) float64 {
	if hi == lo {
		return 0
	}
	return float64(v-lo) / float64(hi-lo)
}

// BackfillStatsVector computes global feature ranges, then walks the catalog in dex id
// pages and rewrites the stats vector of every item that has all features.
// Items missing any feature are skipped and keep their previous vector.
// Returns domain.ErrMissingData when a feature has no rows at all.
func (s *BackfillService) BackfillStatsVector(ctx context.Context, batchSize int) (*BackfillResult, error) {
	batchSize = ClampBackfillBatchSize(batchSize)
	ctx = logger.SetComponent(ctx, "stats_vector_backfill")
	start := time.Now()

	ranges, err := s.store.FeatureRanges(ctx, domain.StatFeatures)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, f := range domain.StatFeatures {
		if _, ok := ranges[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no base values for %s", domain.ErrMissingData, strings.Join(missing, ", "))
	}

	result := &BackfillResult{}
	skipped := 0
	after := 0
	for {
		ids, err := s.store.ListDexIDsAfter(ctx, after, batchSize)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			break
		}
		after = ids[len(ids)-1]

		values, err := s.store.FeatureValues(ctx, ids, domain.StatFeatures)
		if err != nil {
			return nil, err
		}

		page := make(map[int]domain.FeatureVector, len(ids))
		for _, id := range ids {
			vec, ok := buildVector(values[id], ranges)
			if !ok {
				skipped++
				continue
			}
			page[id] = vec
		}

		if err := s.store.WriteVectors(ctx, page); err != nil {
			return nil, err
		}
		if s.sink != nil {
			if err := s.sink.UpsertVectors(ctx, page); err != nil {
				return nil, fmt.Errorf("mirror vectors: %w", err)
			}
		}
		result.Updated += len(page)

		s.log(ctx).WithFields(logger.Fields{
			"after_dex_id": after,
			"page_size":    len(ids),
			"updated":      result.Updated,
		}).Debug("Backfill page written")
	}

	logger.With(logger.Fields{"skipped": skipped}).
		WithCount(result.Updated).
		WithElapsed(start).
		Info(ctx, "Stats vector backfill finished")

	return result, nil
}

func buildVector(values map[string]int, ranges map[string]repository.FeatureRange) (domain.FeatureVector, bool) {
	vec := make(domain.FeatureVector, len(domain.StatFeatures))
	for i, f := range domain.StatFeatures {
		v, ok := values[f]
		if !ok {
			return nil, false
		}
		fr := ranges[f]
		vec[i] = NormalizeFeature(v, fr.Min, fr.Max)
	}
	return vec, true
}
