package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/source"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		URL:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// record builds an upstream record with the six base stats set to stats, in StatFeatures order.
func record(dexID int, name string, types []string, stats ...int) *source.PokemonRecord {
	rec := &source.PokemonRecord{
		DexID:          dexID,
		Name:           name,
		Height:         intPtr(7),
		Weight:         intPtr(69),
		BaseExperience: intPtr(64),
		SpriteDefault:  strPtr("https://sprites.example/" + name + ".png"),
	}
	for i, tn := range types {
		rec.Types = append(rec.Types, source.TypeRef{ID: typeIDs[tn], Name: tn, Slot: i + 1})
	}
	for i, v := range stats {
		rec.Stats = append(rec.Stats, source.StatRef{ID: i + 1, Name: statNames[i], BaseValue: v})
	}
	rec.Abilities = []source.AbilityRef{
		{ID: 65, Name: "overgrow", Slot: 1},
		{ID: 34, Name: "chlorophyll", Slot: 3, IsHidden: true},
	}
	return rec
}

var statNames = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

var typeIDs = map[string]int{
	"normal": 1, "flying": 3, "poison": 4, "fire": 10, "water": 11, "grass": 12, "electric": 13,
}

func mustUpsert(t *testing.T, db *gorm.DB, recs ...*source.PokemonRecord) {
	t.Helper()
	repo := NewPokedexUpsertRepository(db)
	for _, rec := range recs {
		if err := repo.UpsertPokemon(context.Background(), rec); err != nil {
			t.Fatalf("UpsertPokemon(%d): %v", rec.DexID, err)
		}
	}
}
