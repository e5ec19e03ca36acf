package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/gorm"
)

// GenerationRepository reads the static generation lookup table.
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new GenerationRepository.
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// FindByID retrieves a generation by its number.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: generation number.
//
// Returns:
//   - *domain.Generation: generation row if found.
//   - error: wraps domain.ErrNotFound when no row exists.
func (r *GenerationRepository) FindByID(ctx context.Context, id int) (*domain.Generation, error) {
	var gen domain.Generation
	if err := r.db.WithContext(ctx).First(&gen, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: generation %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &gen, nil
}

// FindAll lists every generation ordered by number.
func (r *GenerationRepository) FindAll(ctx context.Context) ([]domain.Generation, error) {
	var gens []domain.Generation
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&gens).Error; err != nil {
		return nil, err
	}
	return gens, nil
}
