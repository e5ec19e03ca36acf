package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/source"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PokedexUpsertRepository writes upstream records into the catalog.
// Writes are keyed on natural keys, so applying the same record twice
// leaves the catalog unchanged apart from updated_at.
type PokedexUpsertRepository struct {
	db *gorm.DB
}

// NewPokedexUpsertRepository creates a new PokedexUpsertRepository.
func NewPokedexUpsertRepository(db *gorm.DB) *PokedexUpsertRepository {
	return &PokedexUpsertRepository{db: db}
}

// UpsertPokemon writes one record and its types, stats and abilities in a single transaction.
// The stats vector and sprite key are owned by the backfill and the sprite mirror and are left untouched.
// References dropped upstream are not pruned.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rec: upstream record to apply.
//
// Returns:
//   - error: non-nil if any write fails; the transaction is rolled back.
func (r *PokedexUpsertRepository) UpsertPokemon(ctx context.Context, rec *source.PokemonRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", domain.ErrInvalidArgument)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		p := &domain.Pokemon{
			DexID:          rec.DexID,
			Name:           rec.Name,
			Height:         rec.Height,
			Weight:         rec.Weight,
			BaseExperience: rec.BaseExperience,
			SpriteDefault:  rec.SpriteDefault,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Omit(clause.Associations, "StatsVector", "SpriteKey").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dex_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "height", "weight", "base_experience", "sprite_default", "updated_at"}),
		}).Create(p).Error; err != nil {
			return fmt.Errorf("upsert pokemon %d: %w", rec.DexID, err)
		}

		for _, t := range rec.Types {
			if err := upsertReference(tx, &domain.Type{ID: t.ID, Name: t.Name}); err != nil {
				return fmt.Errorf("upsert type %d: %w", t.ID, err)
			}
			row := &domain.PokemonType{PokemonDexID: rec.DexID, TypeID: t.ID, Slot: t.Slot}
			if err := upsertJoin(tx, row, "type_id", "slot"); err != nil {
				return fmt.Errorf("upsert pokemon_type %d/%d: %w", rec.DexID, t.ID, err)
			}
		}

		for _, s := range rec.Stats {
			if err := upsertReference(tx, &domain.Stat{ID: s.ID, Name: s.Name}); err != nil {
				return fmt.Errorf("upsert stat %d: %w", s.ID, err)
			}
			row := &domain.PokemonStat{PokemonDexID: rec.DexID, StatID: s.ID, BaseValue: s.BaseValue, Effort: s.Effort}
			if err := upsertJoin(tx, row, "stat_id", "base_value", "effort"); err != nil {
				return fmt.Errorf("upsert pokemon_stat %d/%d: %w", rec.DexID, s.ID, err)
			}
		}

		for _, a := range rec.Abilities {
			if err := upsertReference(tx, &domain.Ability{ID: a.ID, Name: a.Name}); err != nil {
				return fmt.Errorf("upsert ability %d: %w", a.ID, err)
			}
			row := &domain.PokemonAbility{PokemonDexID: rec.DexID, AbilityID: a.ID, Slot: a.Slot, IsHidden: a.IsHidden}
			if err := upsertJoin(tx, row, "ability_id", "slot", "is_hidden"); err != nil {
				return fmt.Errorf("upsert pokemon_ability %d/%d: %w", rec.DexID, a.ID, err)
			}
		}

		return nil
	})
}

// upsertReference inserts a type/stat/ability row by id, always overwriting its name.
func upsertReference(tx *gorm.DB, ref interface{}) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(ref).Error
}

// upsertJoin inserts a join row keyed by (pokemon_dex_id, refColumn), overwriting the given columns.
func upsertJoin(tx *gorm.DB, row interface{}, refColumn string, updates ...string) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pokemon_dex_id"}, {Name: refColumn}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(row).Error
}
