package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timmy/pokedex/internal/api/handler"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/repository"
	"github.com/timmy/pokedex/internal/service"
)

type emptyRuns struct{}

func (emptyRuns) GetRun(ctx context.Context, runID string) (*domain.IngestionRun, error) {
	return nil, domain.ErrNotFound
}

func (emptyRuns) ListRuns(ctx context.Context, limit, offset int) (*repository.RunPage, error) {
	return &repository.RunPage{Items: []domain.IngestionRun{}}, nil
}

func (emptyRuns) ListRunErrors(ctx context.Context, runID string, limit, offset int) (*repository.RunErrorPage, error) {
	return &repository.RunErrorPage{Items: []domain.IngestionError{}}, nil
}

type emptyCatalog struct{}

func (emptyCatalog) FindSimilar(ctx context.Context, dexID, limit int) ([]domain.SimilarPokemon, error) {
	return nil, domain.ErrNotFound
}

func (emptyCatalog) SuggestByName(ctx context.Context, q string, limit int) ([]domain.PokemonSuggestion, error) {
	return []domain.PokemonSuggestion{}, nil
}

func (emptyCatalog) GetDetail(ctx context.Context, dexID int) (*domain.Pokemon, error) {
	return nil, domain.ErrNotFound
}

func (emptyCatalog) FindAll(ctx context.Context) ([]domain.Generation, error) {
	return domain.DefaultGenerations, nil
}

type noopJobs struct{}

func (noopJobs) SyncGeneration(ctx context.Context, gen int) (*domain.IngestionRun, error) {
	return nil, domain.ErrInvalidArgument
}

func (noopJobs) BackfillStatsVector(ctx context.Context, batchSize int) (*service.BackfillResult, error) {
	return &service.BackfillResult{}, nil
}

func TestSetupRouterRoutes(t *testing.T) {
	log := logger.New(&logger.Config{Level: "error", Output: io.Discard, ServiceName: "test"})
	r := SetupRouter(&RouterConfig{
		Mode:      "test",
		Logger:    log,
		Health:    handler.NewHealthHandler(nil),
		Ingestion: handler.NewIngestionHandler(noopJobs{}, noopJobs{}, nil, emptyRuns{}, log),
		Pokedex:   handler.NewPokedexHandler(emptyCatalog{}, emptyCatalog{}, emptyCatalog{}),
	})

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusServiceUnavailable},
		{http.MethodGet, "/v1/generations", http.StatusOK},
		{http.MethodGet, "/v1/pokemon/suggest?q=pika", http.StatusOK},
		{http.MethodGet, "/v1/pokemon/25", http.StatusNotFound},
		{http.MethodGet, "/v1/pokemon/25/similar", http.StatusNotFound},
		{http.MethodPost, "/v1/admin/ingestion/pokedex/sync?generation=0", http.StatusBadRequest},
		{http.MethodPost, "/v1/admin/ingestion/pokedex/backfill-stats-vector", http.StatusOK},
		{http.MethodPost, "/v1/admin/ingestion/pokedex/mirror-sprites", http.StatusServiceUnavailable},
		{http.MethodGet, "/v1/admin/ingestion/runs", http.StatusOK},
		{http.MethodGet, "/v1/admin/ingestion/runs/abc/errors", http.StatusNotFound},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}
