package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/gorm"
)

// Neighbor is one stage-1 candidate: a dex id and its L2 distance to the query vector.
type Neighbor struct {
	DexID    int
	Distance float64
}

// PgVectorIndex answers nearest-neighbor queries with pgvector's <-> operator.
type PgVectorIndex struct {
	db *gorm.DB
}

// NewPgVectorIndex creates a PgVectorIndex. The database must be postgres with the vector extension.
func NewPgVectorIndex(db *gorm.DB) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

// Nearest returns the k closest vectorized pokemon to vec, excluding excludeDexID,
// ordered by distance then dex id.
func (i *PgVectorIndex) Nearest(ctx context.Context, vec domain.FeatureVector, excludeDexID, k int) ([]Neighbor, error) {
	lit := vec.Literal()
	var out []Neighbor
	err := i.db.WithContext(ctx).Raw(
		`SELECT dex_id, stats_vector <-> ?::vector AS distance
		   FROM pokemon
		  WHERE stats_vector IS NOT NULL AND dex_id <> ?
		  ORDER BY distance ASC, dex_id ASC
		  LIMIT ?`,
		lit, excludeDexID, k,
	).Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector nearest: %w", err)
	}
	return out, nil
}

const scanPageSize = 500

// ScanIndex answers nearest-neighbor queries with an exact scan over stored vectors.
// Used on dialects without a vector type.
type ScanIndex struct {
	vectors *StatsVectorRepository
}

// NewScanIndex creates a ScanIndex over the stored stats vectors.
func NewScanIndex(vectors *StatsVectorRepository) *ScanIndex {
	return &ScanIndex{vectors: vectors}
}

// Nearest returns the k closest vectorized pokemon to vec, excluding excludeDexID,
// ordered by distance then dex id.
func (i *ScanIndex) Nearest(ctx context.Context, vec domain.FeatureVector, excludeDexID, k int) ([]Neighbor, error) {
	var all []Neighbor
	after := 0
	for {
		page, err := i.vectors.ListVectorsAfter(ctx, after, scanPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			if p.DexID == excludeDexID || len(p.StatsVector) != domain.FeatureDimensions {
				continue
			}
			all = append(all, Neighbor{DexID: p.DexID, Distance: vec.Distance(p.StatsVector)})
		}
		after = page[len(page)-1].DexID
	}

	sort.Slice(all, func(a, b int) bool {
		if all[a].Distance != all[b].Distance {
			return all[a].Distance < all[b].Distance
		}
		return all[a].DexID < all[b].DexID
	})
	if len(all) > k {
		all = all[:k]
	}
	return all, nil
}
