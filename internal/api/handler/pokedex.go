package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/service"
)

// SimilarityFinder serves similar-item and name suggestion queries.
type SimilarityFinder interface {
	FindSimilar(ctx context.Context, dexID, limit int) ([]domain.SimilarPokemon, error)
	SuggestByName(ctx context.Context, q string, limit int) ([]domain.PokemonSuggestion, error)
}

// PokemonReader loads catalog detail.
type PokemonReader interface {
	GetDetail(ctx context.Context, dexID int) (*domain.Pokemon, error)
}

// GenerationLister lists the generation lookup table.
type GenerationLister interface {
	FindAll(ctx context.Context) ([]domain.Generation, error)
}

// PokedexHandler serves the public catalog endpoints.
type PokedexHandler struct {
	similarity  SimilarityFinder
	pokemon     PokemonReader
	generations GenerationLister
}

// NewPokedexHandler creates a new pokedex handler
func NewPokedexHandler(similarity SimilarityFinder, pokemon PokemonReader, generations GenerationLister) *PokedexHandler {
	return &PokedexHandler{
		similarity:  similarity,
		pokemon:     pokemon,
		generations: generations,
	}
}

// Similar handles GET /v1/pokemon/:dexId/similar?limit.
func (h *PokedexHandler) Similar(c *gin.Context) {
	dexID, ok := dexIDParam(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", service.DefaultSimilarLimit, 1, service.MaxSimilarLimit)
	if !ok {
		return
	}

	items, err := h.similarity.FindSimilar(c.Request.Context(), dexID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dex_id": dexID,
		"items":  items,
	})
}

// Suggest handles GET /v1/pokemon/suggest?q&limit.
func (h *PokedexHandler) Suggest(c *gin.Context) {
	limit, ok := intQuery(c, "limit", service.DefaultSuggestLimit, 1, service.MaxSuggestLimit)
	if !ok {
		return
	}

	items, err := h.similarity.SuggestByName(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetPokemon handles GET /v1/pokemon/:dexId.
func (h *PokedexHandler) GetPokemon(c *gin.Context) {
	dexID, ok := dexIDParam(c)
	if !ok {
		return
	}

	p, err := h.pokemon.GetDetail(c.Request.Context(), dexID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListGenerations handles GET /v1/generations.
func (h *PokedexHandler) ListGenerations(c *gin.Context) {
	gens, err := h.generations.FindAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": gens})
}
