package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cardworth/appraiser/internal/models"
)

const tcgdexBaseURL = "https://api.tcgdex.net/v2/en"

// TCGdexService is the secondary Pokémon catalog, used only when the primary
// catalog returns no results.
type TCGdexService struct {
	client  *http.Client
	baseURL string
}

func NewTCGdexService(baseURL string) *TCGdexService {
	if baseURL == "" {
		baseURL = tcgdexBaseURL
	}
	return &TCGdexService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

type tcgdexSearchResult struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// Search looks the card up by name and applies the collector number filter
// client-side; TCGdex's card search has no number parameter.
func (s *TCGdexService) Search(ctx context.Context, identity models.ExtractedIdentity) ([]models.Candidate, error) {
	if identity.Name == "" {
		return []models.Candidate{}, nil
	}

	params := url.Values{}
	params.Set("name", identity.Name)
	reqURL := fmt.Sprintf("%s/cards?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search tcgdex: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []models.Candidate{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tcgdex API returned status %d", resp.StatusCode)
	}

	var results []tcgdexSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode tcgdex response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, r := range results {
		if identity.CollectorNumber != "" && r.LocalID != identity.CollectorNumber {
			continue
		}
		confidence := pokemonBaseConfidence
		if identity.CollectorNumber != "" && identity.CollectorNumber == r.LocalID {
			confidence = pokemonNumberMatchConfidence
		}
		candidates = append(candidates, models.Candidate{
			Game:            models.GamePokemon,
			Name:            r.Name,
			DisplayName:     r.Name,
			CollectorNumber: r.LocalID,
			Ref: models.CardRef{
				Provider: "tcgdex",
				ID:       r.ID,
				ImageURL: r.Image,
			},
			Confidence: confidence,
		})
	}
	return candidates, nil
}
