package pokeapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timmy/pokedex/internal/domain"
)

const bulbasaurJSON = `{
  "id": 1,
  "name": "bulbasaur",
  "height": 7,
  "weight": 69,
  "base_experience": 64,
  "sprites": {"front_default": "https://raw.example/sprites/1.png"},
  "types": [
    {"slot": 1, "type": {"name": "grass", "url": "https://pokeapi.co/api/v2/type/12/"}},
    {"slot": 2, "type": {"name": "poison", "url": "https://pokeapi.co/api/v2/type/4/"}}
  ],
  "stats": [
    {"base_stat": 45, "effort": 0, "stat": {"name": "hp", "url": "https://pokeapi.co/api/v2/stat/1/"}},
    {"base_stat": 65, "effort": 1, "stat": {"name": "special-attack", "url": "https://pokeapi.co/api/v2/stat/4/"}}
  ],
  "abilities": [
    {"slot": 1, "is_hidden": false, "ability": {"name": "overgrow", "url": "https://pokeapi.co/api/v2/ability/65/"}},
    {"slot": 3, "is_hidden": true, "ability": {"name": "chlorophyll", "url": "https://pokeapi.co/api/v2/ability/34/"}}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bulbasaurJSON))
	})
	mux.HandleFunc("/pokemon/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/pokemon/3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 3, "name": "venusaur", "types": [{"slot": 1, "type": {"name": "grass", "url": "bogus"}}]}`))
	})
	mux.HandleFunc("/sprites/1.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/sprites/huge.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(bytes.Repeat([]byte{0x89}, 4096))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPokemon(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(&Config{BaseURL: srv.URL})

	rec, err := c.FetchPokemon(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchPokemon: %v", err)
	}
	if rec.DexID != 1 || rec.Name != "bulbasaur" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Height == nil || *rec.Height != 7 || rec.BaseExperience == nil || *rec.BaseExperience != 64 {
		t.Errorf("scalar fields not parsed: %+v", rec)
	}
	if rec.SpriteDefault == nil || *rec.SpriteDefault != "https://raw.example/sprites/1.png" {
		t.Errorf("sprite = %v", rec.SpriteDefault)
	}
	if len(rec.Types) != 2 || rec.Types[0].ID != 12 || rec.Types[1].Slot != 2 {
		t.Errorf("types = %+v", rec.Types)
	}
	if len(rec.Stats) != 2 || rec.Stats[1].ID != 4 || rec.Stats[1].BaseValue != 65 || rec.Stats[1].Effort != 1 {
		t.Errorf("stats = %+v", rec.Stats)
	}
	if len(rec.Abilities) != 2 || !rec.Abilities[1].IsHidden || rec.Abilities[1].ID != 34 {
		t.Errorf("abilities = %+v", rec.Abilities)
	}
}

func TestFetchPokemonErrors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(&Config{BaseURL: srv.URL})

	tests := []struct {
		name  string
		dexID int
		want  error
	}{
		{name: "not found", dexID: 404, want: domain.ErrUpstreamNotFound},
		{name: "server error", dexID: 2, want: domain.ErrUpstreamFetch},
		{name: "unparseable reference url", dexID: 3, want: domain.ErrUpstreamFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.FetchPokemon(context.Background(), tt.dexID)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFetchPokemonCanceled(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(&Config{BaseURL: srv.URL, RequestsPerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchPokemon(ctx, 1); err == nil {
		t.Error("expected an error for a canceled context")
	}
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(&Config{BaseURL: "http://unused.invalid"})

	data, contentType, err := c.Download(context.Background(), srv.URL+"/sprites/1.png")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != "png-bytes" || contentType != "image/png" {
		t.Errorf("Download = %q, %q", data, contentType)
	}

	if _, _, err := c.Download(context.Background(), srv.URL+"/sprites/missing.png"); !errors.Is(err, domain.ErrUpstreamFetch) {
		t.Errorf("expected ErrUpstreamFetch, got %v", err)
	}
}

func TestDownloadRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(&Config{BaseURL: "http://unused.invalid", MaxDownloadBytes: 1024})

	if _, _, err := c.Download(context.Background(), srv.URL+"/sprites/huge.png"); !errors.Is(err, domain.ErrUpstreamFetch) {
		t.Errorf("expected ErrUpstreamFetch for a 4096 byte body, got %v", err)
	}

	data, _, err := c.Download(context.Background(), srv.URL+"/sprites/1.png")
	if err != nil {
		t.Fatalf("small body under the cap: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Download = %q", data)
	}
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    int
		wantErr bool
	}{
		{url: "https://pokeapi.co/api/v2/type/12/", want: 12},
		{url: "https://pokeapi.co/api/v2/stat/6", want: 6},
		{url: "https://pokeapi.co/api/v2/ability/", wantErr: true},
		{url: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := IDFromURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("IDFromURL(%q) expected error", tt.url)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("IDFromURL(%q) = %d, %v; want %d", tt.url, got, err, tt.want)
		}
	}
}

func TestGetSourceID(t *testing.T) {
	if got := NewClient(nil).GetSourceID(); got != "pokeapi" {
		t.Errorf("GetSourceID() = %q", got)
	}
}
