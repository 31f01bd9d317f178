package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cardworth/appraiser/internal/models"
)

const ygoprodeckBaseURL = "https://db.ygoprodeck.com/api/v7"

// Yu-Gi-Oh adapter confidence band: higher when the selected print's set
// code matches the request.
const (
	ygoBaseConfidence     = 0.62
	ygoSetMatchConfidence = 0.66
)

// YGOProDeckService searches the YGOPRODeck catalog for Yu-Gi-Oh cards.
type YGOProDeckService struct {
	client  *http.Client
	baseURL string
}

func NewYGOProDeckService(baseURL string) *YGOProDeckService {
	if baseURL == "" {
		baseURL = ygoprodeckBaseURL
	}
	return &YGOProDeckService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

type ygoSearchResponse struct {
	Data []ygoCard `json:"data"`
}

type ygoCard struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	CardSets []ygoPrint `json:"card_sets"`
	Images   []ygoImage `json:"card_images"`
}

type ygoPrint struct {
	SetName   string `json:"set_name"`
	SetCode   string `json:"set_code"`
	SetRarity string `json:"set_rarity"`
}

type ygoImage struct {
	ImageURL      string `json:"image_url"`
	ImageURLSmall string `json:"image_url_small"`
}

func (s *YGOProDeckService) Game() models.Game {
	return models.GameYuGiOh
}

// Search queries by fuzzy name, falling back to a set query when no name was
// extracted. YGOPRODeck answers "no matches" with a 400 error payload, which
// is mapped to an empty result.
func (s *YGOProDeckService) Search(ctx context.Context, identity models.ExtractedIdentity) ([]models.Candidate, error) {
	params := url.Values{}
	switch {
	case identity.Name != "":
		params.Set("fname", identity.Name)
	case identity.SetCode != "":
		params.Set("cardset", identity.SetCode)
	case identity.SetName != "":
		params.Set("cardset", identity.SetName)
	default:
		return []models.Candidate{}, nil
	}

	reqURL := fmt.Sprintf("%s/cardinfo.php?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search ygoprodeck: %w", err)
	}
	defer resp.Body.Close()

	// 400 is YGOPRODeck's "no cards matched" answer.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return []models.Candidate{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ygoprodeck API returned status %d", resp.StatusCode)
	}

	var searchResp ygoSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode ygoprodeck response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(searchResp.Data))
	for _, card := range searchResp.Data {
		candidates = append(candidates, s.convertToCandidate(card, identity))
	}
	return candidates, nil
}

// convertToCandidate picks one print per card: the one whose set code matches
// the request when present, otherwise the first listed print.
func (s *YGOProDeckService) convertToCandidate(card ygoCard, identity models.ExtractedIdentity) models.Candidate {
	var print ygoPrint
	matched := false
	if len(card.CardSets) > 0 {
		print = card.CardSets[0]
		if identity.SetCode != "" {
			for _, cs := range card.CardSets {
				if ygoSetCodeMatches(cs.SetCode, identity.SetCode) {
					print = cs
					matched = true
					break
				}
			}
		}
	}

	var imageURL string
	if len(card.Images) > 0 {
		imageURL = card.Images[0].ImageURLSmall
	}

	confidence := ygoBaseConfidence
	if matched {
		confidence = ygoSetMatchConfidence
	}

	return models.Candidate{
		Game:        models.GameYuGiOh,
		Name:        card.Name,
		DisplayName: card.Name,
		SetName:     print.SetName,
		SetCode:     print.SetCode,
		Variant:     print.SetRarity,
		Ref: models.CardRef{
			Provider: "ygoprodeck",
			ID:       fmt.Sprintf("%d", card.ID),
			ImageURL: imageURL,
		},
		Confidence: confidence,
	}
}

// ygoSetCodeMatches compares Yu-Gi-Oh set codes, which print as
// "LOB-EN001". A bare prefix like "LOB" matches any print from that set.
func ygoSetCodeMatches(printCode, wanted string) bool {
	if strings.EqualFold(printCode, wanted) {
		return true
	}
	prefix, _, found := strings.Cut(printCode, "-")
	return found && strings.EqualFold(prefix, wanted)
}
