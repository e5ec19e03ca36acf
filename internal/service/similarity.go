package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
)

const (
	DefaultSimilarLimit = 10
	MaxSimilarLimit     = 50

	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 20
	SuggestMinScore     = 0.25

	minCandidates       = 30
	candidateMultiplier = 5
	typeBoostStep       = 0.15
	maxBoostedTypes     = 2
)

// NeighborIndex answers stage-1 nearest-neighbor queries over stats vectors.
type NeighborIndex interface {
	Nearest(ctx context.Context, vec domain.FeatureVector, excludeDexID, k int) ([]repository.Neighbor, error)
}

// CatalogReader loads the rows needed to rerank and render candidates.
type CatalogReader interface {
	GetByDexID(ctx context.Context, dexID int) (*domain.Pokemon, error)
	GetByDexIDs(ctx context.Context, dexIDs []int) (map[int]domain.Pokemon, error)
	TypeSlots(ctx context.Context, dexIDs []int) (map[int][]repository.TypeSlot, error)
	SuggestByName(ctx context.Context, q string, minScore float64, limit int) ([]domain.PokemonSuggestion, error)
}

// BoostPolicy scores the type overlap between the base item and a candidate.
// shared lists the base types the candidate also has, in base slot order.
type BoostPolicy interface {
	Boost(base []repository.TypeSlot, shared []string) float64
}

// LinearBoost adds a fixed step per shared type, capped at two types.
type LinearBoost struct{}

func (LinearBoost) Boost(_ []repository.TypeSlot, shared []string) float64 {
	n := len(shared)
	if n > maxBoostedTypes {
		n = maxBoostedTypes
	}
	return typeBoostStep * float64(n)
}

// SlotWeightedBoost sums a weight per shared type by its slot on the base item:
// 1.0 for slot 1, 0.6 for slot 2 and 0.4 for any later slot. The sum is used
// unscaled.
type SlotWeightedBoost struct{}

func (SlotWeightedBoost) Boost(base []repository.TypeSlot, shared []string) float64 {
	var total float64
	for _, name := range shared {
		for _, ts := range base {
			if ts.Name != name {
				continue
			}
			switch ts.Slot {
			case 1:
				total += 1.0
			case 2:
				total += 0.6
			default:
				total += 0.4
			}
			break
		}
	}
	return total
}

// NewBoostPolicy returns the policy named by name ("linear" or "slot").
func NewBoostPolicy(name string) (BoostPolicy, error) {
	switch name {
	case "", "linear":
		return LinearBoost{}, nil
	case "slot":
		return SlotWeightedBoost{}, nil
	}
	return nil, fmt.Errorf("unknown boost policy %q", name)
}

// SimilarityService implements two-stage similar-item retrieval and fuzzy name suggestions.
type SimilarityService struct {
	catalog CatalogReader
	index   NeighborIndex
	boost   BoostPolicy
	logger  *logger.Logger
}

// NewSimilarityService creates a new similarity service. A nil boost uses LinearBoost.
func NewSimilarityService(catalog CatalogReader, index NeighborIndex, boost BoostPolicy, log *logger.Logger) *SimilarityService {
	if boost == nil {
		boost = LinearBoost{}
	}
	return &SimilarityService{catalog: catalog, index: index, boost: boost, logger: log}
}

func (s *SimilarityService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// FindSimilar returns up to limit items closest to dexID by stats vector,
// reranked by type overlap. The base item and items without a vector never appear.
// Returns domain.ErrNotFound when the base is unknown or has no vector.
func (s *SimilarityService) FindSimilar(ctx context.Context, dexID, limit int) ([]domain.SimilarPokemon, error) {
	limit = clampLimit(limit, DefaultSimilarLimit, MaxSimilarLimit)

	base, err := s.catalog.GetByDexID(ctx, dexID)
	if err != nil {
		return nil, err
	}
	if len(base.StatsVector) != domain.FeatureDimensions {
		return nil, fmt.Errorf("%w: pokemon %d has no stats vector", domain.ErrNotFound, dexID)
	}

	k := candidateMultiplier * limit
	if k < minCandidates {
		k = minCandidates
	}
	neighbors, err := s.index.Nearest(ctx, base.StatsVector, dexID, k)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(neighbors)+1)
	ids = append(ids, dexID)
	for _, n := range neighbors {
		if n.DexID != dexID {
			ids = append(ids, n.DexID)
		}
	}

	slots, err := s.catalog.TypeSlots(ctx, ids)
	if err != nil {
		return nil, err
	}
	rows, err := s.catalog.GetByDexIDs(ctx, ids[1:])
	if err != nil {
		return nil, err
	}

	baseTypes := slots[dexID]
	out := make([]domain.SimilarPokemon, 0, len(neighbors))
	for _, n := range neighbors {
		if n.DexID == dexID {
			continue
		}
		row, ok := rows[n.DexID]
		if !ok || len(row.StatsVector) != domain.FeatureDimensions {
			// stale external index entry
			continue
		}
		shared := sharedTypes(baseTypes, slots[n.DexID])
		out = append(out, domain.SimilarPokemon{
			DexID:         n.DexID,
			Name:          row.Name,
			SpriteDefault: row.SpriteDefault,
			Distance:      n.Distance,
			Score:         1/(1+n.Distance) + s.boost.Boost(baseTypes, shared),
			SharedTypes:   shared,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DexID < out[j].DexID
	})
	if len(out) > limit {
		out = out[:limit]
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldDexID: dexID,
		"candidates":      len(neighbors),
		logger.FieldCount: len(out),
	}).Debug("Similar items ranked")

	return out, nil
}

// SuggestByName returns names similar to q with a trigram score of at least SuggestMinScore.
// A blank query yields an empty list.
func (s *SimilarityService) SuggestByName(ctx context.Context, q string, limit int) ([]domain.PokemonSuggestion, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.PokemonSuggestion{}, nil
	}
	limit = clampLimit(limit, DefaultSuggestLimit, MaxSuggestLimit)
	return s.catalog.SuggestByName(ctx, q, SuggestMinScore, limit)
}

// sharedTypes lists the base type names present on the candidate, in base slot order.
func sharedTypes(base, candidate []repository.TypeSlot) []string {
	shared := []string{}
	for _, b := range base {
		for _, c := range candidate {
			if b.Name == c.Name {
				shared = append(shared, b.Name)
				break
			}
		}
	}
	return shared
}

func clampLimit(n, def, hi int) int {
	if n == 0 {
		return def
	}
	if n < 1 {
		return 1
	}
	if n > hi {
		return hi
	}
	return n
}
