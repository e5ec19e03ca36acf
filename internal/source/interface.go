package source

import "context"

// TypeRef is one slot-ordered type entry of an upstream record.
type TypeRef struct {
	ID   int    // Upstream id parsed from the type URL
	Name string
	Slot int
}

// StatRef is one base-stat entry of an upstream record.
type StatRef struct {
	ID        int
	Name      string
	BaseValue int
	Effort    int
}

// AbilityRef is one slot-ordered ability entry of an upstream record.
type AbilityRef struct {
	ID       int
	Name     string
	Slot     int
	IsHidden bool
}

// PokemonRecord is the full upstream record for one catalog item.
type PokemonRecord struct {
	DexID          int
	Name           string
	Height         *int
	Weight         *int
	BaseExperience *int
	SpriteDefault  *string // Sprite URL, nil when upstream has none
	Types          []TypeRef
	Stats          []StatRef
	Abilities      []AbilityRef
}

// Source defines the interface for upstream catalog sources.
type Source interface {
	// GetSourceID returns the identifier recorded on ingestion runs.
	GetSourceID() string

	// FetchPokemon fetches the full record for one dex id.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - dexID: national dex id to fetch.
	// Returns:
	//   - *PokemonRecord: parsed record.
	//   - error: wraps domain.ErrUpstreamNotFound or domain.ErrUpstreamFetch on failure.
	FetchPokemon(ctx context.Context, dexID int) (*PokemonRecord, error)
}
