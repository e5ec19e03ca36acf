package repository

import (
	"context"
	"testing"

	"github.com/timmy/pokedex/internal/domain"
)

func TestFeatureRangesAndValues(t *testing.T) {
	db := newTestDB(t)
	mustUpsert(t, db,
		record(1, "bulbasaur", []string{"grass"}, 45, 49, 49, 65, 65, 45),
		record(4, "charmander", []string{"fire"}, 39, 52, 43, 60, 50, 65),
		record(7, "squirtle", []string{"water"}, 44, 48, 65, 50, 64, 43),
	)
	repo := NewStatsVectorRepository(db)
	ctx := context.Background()

	ranges, err := repo.FeatureRanges(ctx, domain.StatFeatures)
	if err != nil {
		t.Fatalf("FeatureRanges: %v", err)
	}
	if len(ranges) != domain.FeatureDimensions {
		t.Fatalf("expected %d ranges, got %d", domain.FeatureDimensions, len(ranges))
	}
	if hp := ranges["hp"]; hp.Min != 39 || hp.Max != 45 {
		t.Errorf("hp range = %+v", hp)
	}
	if spd := ranges["speed"]; spd.Min != 43 || spd.Max != 65 {
		t.Errorf("speed range = %+v", spd)
	}

	ids, err := repo.ListDexIDsAfter(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListDexIDsAfter: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 7 {
		t.Errorf("ids = %v", ids)
	}

	values, err := repo.FeatureValues(ctx, ids, domain.StatFeatures)
	if err != nil {
		t.Fatalf("FeatureValues: %v", err)
	}
	if values[4]["attack"] != 52 || values[7]["defense"] != 65 {
		t.Errorf("values = %+v", values)
	}
}

func TestFeatureRangesEmptyCatalog(t *testing.T) {
	repo := NewStatsVectorRepository(newTestDB(t))
	ranges, err := repo.FeatureRanges(context.Background(), domain.StatFeatures)
	if err != nil {
		t.Fatalf("FeatureRanges: %v", err)
	}
	if len(ranges) != 0 {
		t.Errorf("expected no ranges, got %+v", ranges)
	}
}

func TestWriteAndListVectors(t *testing.T) {
	db := newTestDB(t)
	mustUpsert(t, db,
		record(1, "bulbasaur", []string{"grass"}, 45, 49, 49, 65, 65, 45),
		record(4, "charmander", []string{"fire"}, 39, 52, 43, 60, 50, 65),
		record(7, "squirtle", []string{"water"}, 44, 48, 65, 50, 64, 43),
	)
	repo := NewStatsVectorRepository(db)
	ctx := context.Background()

	err := repo.WriteVectors(ctx, map[int]domain.FeatureVector{
		1: {1, 0.5, 0.27, 1, 1, 0.09},
		7: {0.83, 0, 1, 0, 0.93, 0},
	})
	if err != nil {
		t.Fatalf("WriteVectors: %v", err)
	}

	rows, err := repo.ListVectorsAfter(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListVectorsAfter: %v", err)
	}
	if len(rows) != 2 || rows[0].DexID != 1 || rows[1].DexID != 7 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[1].StatsVector[2] != 1 {
		t.Errorf("squirtle vector = %v", rows[1].StatsVector)
	}
}
