package repository

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/timmy/pokedex/internal/domain"
)

func seedStarters(t *testing.T) *PokemonRepository {
	t.Helper()
	db := newTestDB(t)
	mustUpsert(t, db,
		record(1, "bulbasaur", []string{"grass", "poison"}, 45, 49, 49, 65, 65, 45),
		record(4, "charmander", []string{"fire"}, 39, 52, 43, 60, 50, 65),
		record(5, "charmeleon", []string{"fire"}, 58, 64, 58, 80, 65, 80),
		record(6, "charizard", []string{"fire", "flying"}, 78, 84, 78, 109, 85, 100),
		record(7, "squirtle", []string{"water"}, 44, 48, 65, 50, 64, 43),
	)
	return NewPokemonRepository(db)
}

func TestSuggestByNameInProcess(t *testing.T) {
	repo := seedStarters(t)

	got, err := repo.SuggestByName(context.Background(), "char", 0.25, 10)
	if err != nil {
		t.Fatalf("SuggestByName: %v", err)
	}
	wantIDs := []int{6, 4, 5}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d suggestions, got %+v", len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].DexID != id {
			t.Errorf("suggestion %d = %d, want %d", i, got[i].DexID, id)
		}
	}
	if math.Abs(got[0].Score-4.0/11.0) > 1e-9 {
		t.Errorf("charizard score = %f", got[0].Score)
	}
	if got[1].SpriteDefault == nil {
		t.Error("expected sprite url on suggestion")
	}

	limited, err := repo.SuggestByName(context.Background(), "char", 0.25, 1)
	if err != nil {
		t.Fatalf("SuggestByName limit: %v", err)
	}
	if len(limited) != 1 || limited[0].DexID != 6 {
		t.Errorf("limited suggestions = %+v", limited)
	}
}

func TestSuggestByNameNoMatch(t *testing.T) {
	repo := seedStarters(t)
	got, err := repo.SuggestByName(context.Background(), "zzz", 0.25, 10)
	if err != nil {
		t.Fatalf("SuggestByName: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGetDetailOrdering(t *testing.T) {
	repo := seedStarters(t)

	p, err := repo.GetDetail(context.Background(), 6)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if len(p.Types) != 2 || p.Types[0].Type.Name != "fire" || p.Types[1].Type.Name != "flying" {
		t.Errorf("types = %+v", p.Types)
	}
	if len(p.Stats) != 6 || p.Stats[0].Stat.Name != "hp" || p.Stats[5].Stat.Name != "speed" {
		t.Errorf("stats = %+v", p.Stats)
	}
	if len(p.Abilities) != 2 || p.Abilities[1].IsHidden != true {
		t.Errorf("abilities = %+v", p.Abilities)
	}

	if _, err := repo.GetDetail(context.Background(), 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTypeSlotsAndGetByDexIDs(t *testing.T) {
	repo := seedStarters(t)
	ctx := context.Background()

	slots, err := repo.TypeSlots(ctx, []int{1, 6, 999})
	if err != nil {
		t.Fatalf("TypeSlots: %v", err)
	}
	if got := slots[1]; len(got) != 2 || got[0] != (TypeSlot{Name: "grass", Slot: 1}) || got[1] != (TypeSlot{Name: "poison", Slot: 2}) {
		t.Errorf("bulbasaur slots = %+v", got)
	}
	if _, ok := slots[999]; ok {
		t.Error("unknown dex id should be absent")
	}

	rows, err := repo.GetByDexIDs(ctx, []int{4, 7, 999})
	if err != nil {
		t.Fatalf("GetByDexIDs: %v", err)
	}
	if len(rows) != 2 || rows[4].Name != "charmander" || rows[7].Name != "squirtle" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSpritesToMirror(t *testing.T) {
	repo := seedStarters(t)
	ctx := context.Background()

	if err := repo.SetSpriteKey(ctx, 4, "sprites/04/4.png"); err != nil {
		t.Fatalf("SetSpriteKey: %v", err)
	}
	page, err := repo.ListSpritesToMirror(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListSpritesToMirror: %v", err)
	}
	var ids []int
	for _, p := range page {
		ids = append(ids, p.DexID)
	}
	want := []int{1, 5, 6, 7}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	if err := repo.SetSpriteKey(ctx, 999, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SetSpriteKey unknown expected ErrNotFound, got %v", err)
	}
}
