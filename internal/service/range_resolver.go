package service

import (
	"context"

	"github.com/timmy/pokedex/internal/domain"
)

// GenerationLookup loads generation rows.
type GenerationLookup interface {
	FindByID(ctx context.Context, id int) (*domain.Generation, error)
}

// RangeResolver maps a generation number to its inclusive dex range.
type RangeResolver struct {
	generations GenerationLookup
}

// NewRangeResolver creates a new RangeResolver.
func NewRangeResolver(generations GenerationLookup) *RangeResolver {
	return &RangeResolver{generations: generations}
}

// Resolve returns the dex range of gen.
// Errors wrap domain.ErrNotFound for an unknown generation and
// domain.ErrInvalidArgument when the stored bounds are not a valid range.
func (r *RangeResolver) Resolve(ctx context.Context, gen domain.GenerationID) (domain.DexRange, error) {
	row, err := r.generations.FindByID(ctx, int(gen))
	if err != nil {
		return domain.DexRange{}, err
	}
	return domain.NewDexRange(row.DexFrom, row.DexTo)
}
