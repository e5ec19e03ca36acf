package pokeapi

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/source"
	"golang.org/x/time/rate"
)

const (
	SourceID = "pokeapi"

	defaultBaseURL          = "https://pokeapi.co/api/v2"
	defaultTimeout          = 20 * time.Second
	defaultMaxDownloadBytes = 2 << 20
)

var idFromURLPattern = regexp.MustCompile(`/(\d+)/?$`)

// Config holds configuration for the PokeAPI client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables client-side rate limiting
	UserAgent         string
	MaxDownloadBytes  int // sprite body cap; <= 0 uses 2 MiB
}

// Client implements source.Source against the public PokeAPI.
type Client struct {
	client           *resty.Client
	limiter          *rate.Limiter
	maxDownloadBytes int
}

// NewClient creates a new PokeAPI client.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	maxDownload := cfg.MaxDownloadBytes
	if maxDownload <= 0 {
		maxDownload = defaultMaxDownloadBytes
	}

	return &Client{
		client:           client,
		limiter:          limiter,
		maxDownloadBytes: maxDownload,
	}
}

// GetSourceID returns the identifier recorded on ingestion runs.
func (c *Client) GetSourceID() string {
	return SourceID
}

// PokeAPI response structures
type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Height         *int   `json:"height"`
	Weight         *int   `json:"weight"`
	BaseExperience *int   `json:"base_experience"`
	Sprites        struct {
		FrontDefault *string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Effort   int           `json:"effort"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Slot     int           `json:"slot"`
		IsHidden bool          `json:"is_hidden"`
		Ability  namedResource `json:"ability"`
	} `json:"abilities"`
}

// FetchPokemon fetches one pokemon by dex id.
func (c *Client) FetchPokemon(ctx context.Context, dexID int) (*source.PokemonRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var body pokemonResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/pokemon/" + strconv.Itoa(dexID))
	if err != nil {
		return nil, fmt.Errorf("%w: GET /pokemon/%d: %v", domain.ErrUpstreamFetch, dexID, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: pokemon %d", domain.ErrUpstreamNotFound, dexID)
	case resp.IsError():
		return nil, fmt.Errorf("%w: GET /pokemon/%d: status %d", domain.ErrUpstreamFetch, dexID, resp.StatusCode())
	}

	record, err := toRecord(&body)
	if err != nil {
		return nil, fmt.Errorf("%w: pokemon %d: %v", domain.ErrUpstreamFetch, dexID, err)
	}
	return record, nil
}

// Download fetches an arbitrary asset URL, such as a sprite image.
// Returns the body and the reported content type. Bodies larger than
// MaxDownloadBytes fail with ErrUpstreamFetch.
func (c *Client) Download(ctx context.Context, url string) ([]byte, string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, "", err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResponseBodyLimit(c.maxDownloadBytes).
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("%w: GET %s: %v", domain.ErrUpstreamFetch, url, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("%w: GET %s: status %d", domain.ErrUpstreamFetch, url, resp.StatusCode())
	}
	if resp.Size() > int64(c.maxDownloadBytes) {
		return nil, "", fmt.Errorf("%w: GET %s: body of %d bytes exceeds %d", domain.ErrUpstreamFetch, url, resp.Size(), c.maxDownloadBytes)
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamFetch, err)
	}
	return nil
}

func toRecord(body *pokemonResponse) (*source.PokemonRecord, error) {
	if body.ID <= 0 || body.Name == "" {
		return nil, fmt.Errorf("response is missing id or name")
	}

	record := &source.PokemonRecord{
		DexID:          body.ID,
		Name:           body.Name,
		Height:         body.Height,
		Weight:         body.Weight,
		BaseExperience: body.BaseExperience,
		SpriteDefault:  body.Sprites.FrontDefault,
		Types:          make([]source.TypeRef, 0, len(body.Types)),
		Stats:          make([]source.StatRef, 0, len(body.Stats)),
		Abilities:      make([]source.AbilityRef, 0, len(body.Abilities)),
	}

	for _, t := range body.Types {
		id, err := IDFromURL(t.Type.URL)
		if err != nil {
			return nil, err
		}
		record.Types = append(record.Types, source.TypeRef{ID: id, Name: t.Type.Name, Slot: t.Slot})
	}
	for _, s := range body.Stats {
		id, err := IDFromURL(s.Stat.URL)
		if err != nil {
			return nil, err
		}
		record.Stats = append(record.Stats, source.StatRef{ID: id, Name: s.Stat.Name, BaseValue: s.BaseStat, Effort: s.Effort})
	}
	for _, a := range body.Abilities {
		id, err := IDFromURL(a.Ability.URL)
		if err != nil {
			return nil, err
		}
		record.Abilities = append(record.Abilities, source.AbilityRef{ID: id, Name: a.Ability.Name, Slot: a.Slot, IsHidden: a.IsHidden})
	}

	return record, nil
}

// IDFromURL extracts the trailing numeric id of a PokeAPI resource URL,
// e.g. "https://pokeapi.co/api/v2/type/12/" -> 12.
func IDFromURL(url string) (int, error) {
	m := idFromURLPattern.FindStringSubmatch(url)
	if m == nil {
		return 0, fmt.Errorf("could not parse id from url: %s", url)
	}
	return strconv.Atoi(m[1])
}
