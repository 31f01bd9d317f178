package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cardworth/appraiser/internal/models"
)

const pokemonTCGBaseURL = "https://api.pokemontcg.io/v2"

// Pokémon adapter confidence band: high when the collector number matches
// exactly, low otherwise.
const (
	pokemonBaseConfidence        = 0.65
	pokemonNumberMatchConfidence = 0.88
)

// PokemonTCGService searches the primary Pokémon catalog, falling back to
// TCGdex when the primary returns nothing.
type PokemonTCGService struct {
	client   *http.Client
	apiKey   string
	baseURL  string
	fallback *TCGdexService
}

func NewPokemonTCGService(baseURL, apiKey string, fallback *TCGdexService) *PokemonTCGService {
	if baseURL == "" {
		baseURL = pokemonTCGBaseURL
	}
	return &PokemonTCGService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:   apiKey,
		baseURL:  baseURL,
		fallback: fallback,
	}
}

type pokemonSearchResponse struct {
	Data       []pokemonCard `json:"data"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Count      int           `json:"count"`
}

type pokemonCard struct {
	Set    pokemonSet    `json:"set"`
	Images pokemonImages `json:"images"`
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Number string        `json:"number"`
	Rarity string        `json:"rarity"`
}

type pokemonSet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type pokemonImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

func (s *PokemonTCGService) Game() models.Game {
	return models.GamePokemon
}

// Search is two-tier: the primary catalog first, then TCGdex with the same
// name/number filters when the primary comes back empty. A fallback failure
// is logged, not surfaced; the primary's empty result stands.
func (s *PokemonTCGService) Search(ctx context.Context, identity models.ExtractedIdentity) ([]models.Candidate, error) {
	if identity.Name == "" {
		return []models.Candidate{}, nil
	}

	candidates, err := s.searchPrimary(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return candidates, nil
	}

	if s.fallback == nil {
		return candidates, nil
	}
	fallbackCandidates, err := s.fallback.Search(ctx, identity)
	if err != nil {
		log.Printf("[Pokemon] tcgdex fallback failed: %v", err)
		return candidates, nil
	}
	return fallbackCandidates, nil
}

func (s *PokemonTCGService) searchPrimary(ctx context.Context, identity models.ExtractedIdentity) ([]models.Candidate, error) {
	query := buildPokemonQuery(identity)
	reqURL := fmt.Sprintf("%s/cards?q=%s", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search pokemon tcg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []models.Candidate{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pokemon tcg API returned status %d", resp.StatusCode)
	}

	var searchResp pokemonSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode pokemon tcg response: %w", err)
	}

	candidates := make([]models.Candidate, len(searchResp.Data))
	for i, pc := range searchResp.Data {
		candidates[i] = s.convertToCandidate(pc, identity)
	}
	return candidates, nil
}

// buildPokemonQuery narrows a name query by set id and collector number when
// those were extracted. The trailing * keeps suffixed names (ex, V, VMAX)
// in the result set.
func buildPokemonQuery(identity models.ExtractedIdentity) string {
	parts := []string{fmt.Sprintf(`name:"%s*"`, identity.Name)}
	if identity.SetCode != "" {
		parts = append(parts, "set.id:"+strings.ToLower(identity.SetCode))
	}
	if identity.CollectorNumber != "" {
		parts = append(parts, "number:"+identity.CollectorNumber)
	}
	return strings.Join(parts, " ")
}

func (s *PokemonTCGService) convertToCandidate(pc pokemonCard, identity models.ExtractedIdentity) models.Candidate {
	confidence := pokemonBaseConfidence
	if identity.CollectorNumber != "" && identity.CollectorNumber == pc.Number {
		confidence = pokemonNumberMatchConfidence
	}

	return models.Candidate{
		Game:            models.GamePokemon,
		Name:            pc.Name,
		DisplayName:     pc.Name,
		SetName:         pc.Set.Name,
		SetCode:         pc.Set.ID,
		CollectorNumber: pc.Number,
		Variant:         pc.Rarity,
		Ref: models.CardRef{
			Provider: "pokemontcg",
			ID:       pc.ID,
			ImageURL: pc.Images.Small,
		},
		Confidence: confidence,
	}
}
