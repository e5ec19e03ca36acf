package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
	"github.com/timmy/pokedex/internal/source"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.InitDB(&config.DatabaseConfig{
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

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard, ServiceName: "test"})
}

var typeIDs = map[string]int{"normal": 1, "flying": 3, "poison": 4, "fire": 10, "water": 11, "grass": 12, "electric": 13}

// makeRecord builds a record with the given types in slot order and the base stats in
// domain.StatFeatures order. Fewer than six stats leaves the remaining features absent.
func makeRecord(dexID int, name string, types []string, stats ...int) *source.PokemonRecord {
	sprite := fmt.Sprintf("https://sprites.example/%d.png", dexID)
	rec := &source.PokemonRecord{DexID: dexID, Name: name, SpriteDefault: &sprite}
	for i, tn := range types {
		rec.Types = append(rec.Types, source.TypeRef{ID: typeIDs[tn], Name: tn, Slot: i + 1})
	}
	for i, v := range stats {
		rec.Stats = append(rec.Stats, source.StatRef{ID: i + 1, Name: domain.StatFeatures[i], BaseValue: v})
	}
	return rec
}

func upsertAll(t *testing.T, db *gorm.DB, recs ...*source.PokemonRecord) {
	t.Helper()
	repo := repository.NewPokedexUpsertRepository(db)
	for _, rec := range recs {
		if err := repo.UpsertPokemon(context.Background(), rec); err != nil {
			t.Fatalf("UpsertPokemon(%d): %v", rec.DexID, err)
		}
	}
}

// fakeSource serves generated records. Ids in fail return the mapped error;
// onFetch runs before every fetch.
type fakeSource struct {
	fail    map[int]error
	onFetch func(dexID int)
	calls   []int
}

func (f *fakeSource) GetSourceID() string { return "fake" }

func (f *fakeSource) FetchPokemon(ctx context.Context, dexID int) (*source.PokemonRecord, error) {
	f.calls = append(f.calls, dexID)
	if f.onFetch != nil {
		f.onFetch(dexID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.fail[dexID]; ok {
		return nil, err
	}
	return makeRecord(dexID, fmt.Sprintf("pokemon-%d", dexID), []string{"normal"}, 50, 50, 50, 50, 50, dexID%100+1), nil
}
