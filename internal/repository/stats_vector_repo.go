package repository

import (
	"context"
	"fmt"

	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/gorm"
)

// FeatureRange is the observed min/max base value of one stat across the catalog.
type FeatureRange struct {
	Name string
	Min  int
	Max  int
}

// StatsVectorRepository reads base stats and writes normalized stats vectors.
type StatsVectorRepository struct {
	db *gorm.DB
}

// NewStatsVectorRepository creates a new StatsVectorRepository.
func NewStatsVectorRepository(db *gorm.DB) *StatsVectorRepository {
	return &StatsVectorRepository{db: db}
}

// FeatureRanges computes min/max per stat name. Stats with no rows are absent from the result.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - features: stat names to aggregate.
//
// Returns:
//   - map[string]FeatureRange: ranges keyed by stat name.
//   - error: non-nil if the query fails.
func (r *StatsVectorRepository) FeatureRanges(ctx context.Context, features []string) (map[string]FeatureRange, error) {
	var rows []FeatureRange
	err := r.db.WithContext(ctx).
		Table("pokemon_stats AS ps").
		Select("s.name AS name, MIN(ps.base_value) AS min, MAX(ps.base_value) AS max").
		Joins("JOIN stats s ON s.id = ps.stat_id").
		Where("s.name IN ?", features).
		Group("s.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate feature ranges: %w", err)
	}
	out := make(map[string]FeatureRange, len(rows))
	for _, fr := range rows {
		out[fr.Name] = fr
	}
	return out, nil
}

// ListDexIDsAfter returns up to limit dex ids greater than afterDexID, ascending.
func (r *StatsVectorRepository) ListDexIDsAfter(ctx context.Context, afterDexID, limit int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&domain.Pokemon{}).
		Where("dex_id > ?", afterDexID).
		Order("dex_id ASC").
		Limit(limit).
		Pluck("dex_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page dex ids: %w", err)
	}
	return ids, nil
}

// FeatureValues returns the base values of the requested stats for each pokemon.
func (r *StatsVectorRepository) FeatureValues(ctx context.Context, dexIDs []int, features []string) (map[int]map[string]int, error) {
	out := make(map[int]map[string]int, len(dexIDs))
	if len(dexIDs) == 0 {
		return out, nil
	}
	type row struct {
		PokemonDexID int
		Name         string
		BaseValue    int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("pokemon_stats AS ps").
		Select("ps.pokemon_dex_id, s.name, ps.base_value").
		Joins("JOIN stats s ON s.id = ps.stat_id").
		Where("ps.pokemon_dex_id IN ? AND s.name IN ?", dexIDs, features).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load feature values: %w", err)
	}
	for _, rw := range rows {
		m, ok := out[rw.PokemonDexID]
		if !ok {
			m = make(map[string]int, len(features))
			out[rw.PokemonDexID] = m
		}
		m[rw.Name] = rw.BaseValue
	}
	return out, nil
}

// WriteVectors stores the vectors of one page in a single transaction.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - vectors: normalized vectors keyed by dex id.
//
// Returns:
//   - error: non-nil if any update fails; the page is rolled back.
func (r *StatsVectorRepository) WriteVectors(ctx context.Context, vectors map[int]domain.FeatureVector) error {
	if len(vectors) == 0 {
		return nil
	}
	pg := r.db.Dialector.Name() == dialectPostgres
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for dexID, vec := range vectors {
			var value interface{} = vec
			if pg {
				value = gorm.Expr("?::vector", vec.Literal())
			}
			if err := tx.Model(&domain.Pokemon{}).
				Where("dex_id = ?", dexID).
				UpdateColumn("stats_vector", value).Error; err != nil {
				return fmt.Errorf("failed to write vector for %d: %w", dexID, err)
			}
		}
		return nil
	})
}

// ListVectorsAfter pages pokemon that carry a stats vector, by dex id.
func (r *StatsVectorRepository) ListVectorsAfter(ctx context.Context, afterDexID, limit int) ([]domain.Pokemon, error) {
	var rows []domain.Pokemon
	err := r.db.WithContext(ctx).
		Select("dex_id", "stats_vector").
		Where("dex_id > ? AND stats_vector IS NOT NULL", afterDexID).
		Order("dex_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to page vectors: %w", err)
	}
	return rows, nil
}
