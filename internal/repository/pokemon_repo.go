package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/gorm"
)

// PokemonRepository handles catalog read operations.
type PokemonRepository struct {
	db *gorm.DB
}

// NewPokemonRepository creates a new PokemonRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *PokemonRepository: repository instance bound to db.
func NewPokemonRepository(db *gorm.DB) *PokemonRepository {
	return &PokemonRepository{db: db}
}

// GetByDexID retrieves a pokemon row without its children.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - dexID: national dex id.
//
// Returns:
//   - *domain.Pokemon: pokemon if found.
//   - error: wraps domain.ErrNotFound when no row exists.
func (r *PokemonRepository) GetByDexID(ctx context.Context, dexID int) (*domain.Pokemon, error) {
	var p domain.Pokemon
	if err := r.db.WithContext(ctx).First(&p, "dex_id = ?", dexID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pokemon %d", domain.ErrNotFound, dexID)
		}
		return nil, err
	}
	return &p, nil
}

// GetDetail retrieves a pokemon with its types and abilities in slot order
// and its stats in stat id order.
func (r *PokemonRepository) GetDetail(ctx context.Context, dexID int) (*domain.Pokemon, error) {
	var p domain.Pokemon
	err := r.db.WithContext(ctx).
		Preload("Types", func(db *gorm.DB) *gorm.DB { return db.Order("slot ASC") }).
		Preload("Types.Type").
		Preload("Stats", func(db *gorm.DB) *gorm.DB { return db.Order("stat_id ASC") }).
		Preload("Stats.Stat").
		Preload("Abilities", func(db *gorm.DB) *gorm.DB { return db.Order("slot ASC") }).
		Preload("Abilities.Ability").
		First(&p, "dex_id = ?", dexID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: pokemon %d", domain.ErrNotFound, dexID)
		}
		return nil, err
	}
	return &p, nil
}

// GetByDexIDs loads several pokemon keyed by dex id. Unknown ids are absent from the map.
func (r *PokemonRepository) GetByDexIDs(ctx context.Context, dexIDs []int) (map[int]domain.Pokemon, error) {
	out := make(map[int]domain.Pokemon, len(dexIDs))
	if len(dexIDs) == 0 {
		return out, nil
	}
	var rows []domain.Pokemon
	if err := r.db.WithContext(ctx).Where("dex_id IN ?", dexIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.DexID] = p
	}
	return out, nil
}

// TypeSlot is a type name in a given slot of a pokemon.
type TypeSlot struct {
	Name string
	Slot int
}

// TypeSlots returns the slot-ordered type names of each requested pokemon.
func (r *PokemonRepository) TypeSlots(ctx context.Context, dexIDs []int) (map[int][]TypeSlot, error) {
	out := make(map[int][]TypeSlot, len(dexIDs))
	if len(dexIDs) == 0 {
		return out, nil
	}
	type row struct {
		PokemonDexID int
		Slot         int
		Name         string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("pokemon_types AS pt").
		Select("pt.pokemon_dex_id, pt.slot, t.name").
		Joins("JOIN types t ON t.id = pt.type_id").
		Where("pt.pokemon_dex_id IN ?", dexIDs).
		Order("pt.pokemon_dex_id ASC, pt.slot ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.PokemonDexID] = append(out[rw.PokemonDexID], TypeSlot{Name: rw.Name, Slot: rw.Slot})
	}
	return out, nil
}

// SuggestByName ranks pokemon by trigram similarity of their name to q.
// Postgres uses pg_trgm; other dialects score names in process with the same trigram rules.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: non-empty query text.
//   - minScore: inclusive score threshold.
//   - limit: maximum number of suggestions.
//
// Returns:
//   - []domain.PokemonSuggestion: ordered by score desc, dex id asc.
//   - error: non-nil if the query fails.
func (r *PokemonRepository) SuggestByName(ctx context.Context, q string, minScore float64, limit int) ([]domain.PokemonSuggestion, error) {
	if r.db.Dialector.Name() == dialectPostgres {
		return r.suggestPgTrgm(ctx, q, minScore, limit)
	}
	return r.suggestInProcess(ctx, q, minScore, limit)
}

func (r *PokemonRepository) suggestPgTrgm(ctx context.Context, q string, minScore float64, limit int) ([]domain.PokemonSuggestion, error) {
	out := []domain.PokemonSuggestion{}
	err := r.db.WithContext(ctx).Raw(
		`SELECT dex_id, name, sprite_default, similarity(name, ?) AS score
		   FROM pokemon
		  WHERE similarity(name, ?) >= ?
		  ORDER BY score DESC, dex_id ASC
		  LIMIT ?`,
		q, q, minScore, limit,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PokemonRepository) suggestInProcess(ctx context.Context, q string, minScore float64, limit int) ([]domain.PokemonSuggestion, error) {
	var rows []domain.Pokemon
	if err := r.db.WithContext(ctx).
		Select("dex_id", "name", "sprite_default").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := []domain.PokemonSuggestion{}
	for _, p := range rows {
		score := TrigramSimilarity(p.Name, q)
		if score < minScore {
			continue
		}
		out = append(out, domain.PokemonSuggestion{
			DexID:         p.DexID,
			Name:          p.Name,
			SpriteDefault: p.SpriteDefault,
			Score:         score,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DexID < out[j].DexID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListSpritesToMirror pages pokemon that have a sprite URL but no mirrored key, by dex id.
func (r *PokemonRepository) ListSpritesToMirror(ctx context.Context, afterDexID, limit int) ([]domain.Pokemon, error) {
	var rows []domain.Pokemon
	err := r.db.WithContext(ctx).
		Select("dex_id", "name", "sprite_default").
		Where("dex_id > ? AND sprite_default IS NOT NULL AND sprite_default <> '' AND sprite_key IS NULL", afterDexID).
		Order("dex_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetSpriteKey records the object storage key of a mirrored sprite.
func (r *PokemonRepository) SetSpriteKey(ctx context.Context, dexID int, key string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Pokemon{}).
		Where("dex_id = ?", dexID).
		Update("sprite_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: pokemon %d", domain.ErrNotFound, dexID)
	}
	return nil
}
